package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appoutbox "rento/internal/app/outbox"
	"rento/internal/infra/outbox"
	"rento/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload []byte
}

type fakeProducer struct {
	fail bool
	out  []published
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, _ map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload})
	return nil
}

func seed(t *testing.T, queue *memory.Outbox) {
	t.Helper()
	err := queue.Append(context.Background(), []appoutbox.EventRecord{{
		ID:         "evt-1",
		Name:       "booking.requested",
		Payload:    []byte(`{"BookingID":"b-1"}`),
		OccurredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Aggregate:  "b-1",
	}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestWorkerPublishesCloudEvents(t *testing.T) {
	queue := memory.NewOutbox()
	seed(t, queue)
	producer := &fakeProducer{}
	w := &outbox.Worker{Queue: queue, Producer: producer, TopicPrefix: "test.", ID: "w1"}

	sent, err := w.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if sent != 1 || len(producer.out) != 1 {
		t.Fatalf("expected one publish, got %d", len(producer.out))
	}
	msg := producer.out[0]
	if msg.topic != "test.booking.events.v1" || msg.key != "b-1" {
		t.Fatalf("unexpected routing %s/%s", msg.topic, msg.key)
	}
	var envelope map[string]any
	if err := json.Unmarshal(msg.payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope["specversion"] != "1.0" || envelope["type"] != "rento.booking.requested.v1" {
		t.Fatalf("unexpected envelope %v", envelope)
	}
	if len(queue.Pending()) != 0 {
		t.Fatalf("sent record still pending")
	}
}

func TestWorkerBacksOffOnFailure(t *testing.T) {
	queue := memory.NewOutbox()
	seed(t, queue)
	producer := &fakeProducer{fail: true}
	w := &outbox.Worker{Queue: queue, Producer: producer, ID: "w1", Backoff: []time.Duration{time.Hour}}

	sent, err := w.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected nothing sent, got %d", sent)
	}
	if len(queue.Pending()) != 1 {
		t.Fatalf("failed record should stay queued")
	}
	producer.fail = false
	if sent, _ := w.Drain(context.Background()); sent != 0 {
		t.Fatalf("record retried before its backoff elapsed")
	}
}

func TestWorkerRequiresDependencies(t *testing.T) {
	if err := (&outbox.Worker{}).Run(context.Background()); !errors.Is(err, outbox.ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}
