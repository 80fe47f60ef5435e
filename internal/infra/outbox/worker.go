// Package outbox relays stored domain events to the message broker.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "rento/internal/app/outbox"
)

// Message is a claimed outbox record.
type Message struct {
	Record   appoutbox.EventRecord
	Attempts int
}

// Queue is the relay side of an outbox store.
type Queue interface {
	// Claim returns nil when nothing is due.
	Claim(ctx context.Context, workerID string) (*Message, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Worker struct {
	Queue       Queue
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	// BatchSize bounds how many messages one tick relays.
	BatchSize int
	Logger    *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = "relay-" + uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	w.logger().Info("outbox relay started", "worker_id", w.ID, "interval", w.interval())
	for {
		select {
		case <-ctx.Done():
			w.logger().Info("outbox relay stopped", "worker_id", w.ID)
			return nil
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger().Error("outbox relay tick failed", "error", err)
			}
		}
	}
}

// Drain relays up to BatchSize due messages and reports how many were sent.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	sent := 0
	for i := 0; i < w.batchSize(); i++ {
		msg, err := w.Queue.Claim(ctx, w.ID)
		if err != nil {
			return sent, err
		}
		if msg == nil {
			return sent, nil
		}
		if err := w.relay(ctx, msg); err != nil {
			w.logger().Warn("outbox publish failed", "event_id", msg.Record.ID, "event", msg.Record.Name, "attempts", msg.Attempts+1, "error", err)
			if markErr := w.Queue.MarkFailed(ctx, msg.Record.ID, w.nextRetry(msg.Attempts), err.Error()); markErr != nil {
				return sent, markErr
			}
			continue
		}
		if err := w.Queue.MarkSent(ctx, msg.Record.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (w *Worker) relay(ctx context.Context, msg *Message) error {
	payload, headers, err := w.cloudEvent(msg.Record)
	if err != nil {
		return err
	}
	return w.Producer.Publish(ctx, w.topicFor(msg.Record.Name), msg.Record.Aggregate, payload, headers)
}

// cloudEvent wraps the record in a CloudEvents 1.0 JSON envelope.
func (w *Worker) cloudEvent(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            "rento." + rec.Name + ".v1",
		"source":          w.source(),
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps "booking.cancelled" to "<prefix>booking.events.v1".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 50
	}
	return w.BatchSize
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://rento"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
