package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Publisher is the subset of Producer guarded by the breaker.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// BreakerProducer stops hammering an unhealthy broker: after consecutive failures the
// breaker opens and publishes fail fast until the timeout elapses. The outbox keeps the
// events and retries them later.
type BreakerProducer struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerProducer(name string, next Publisher, logger *slog.Logger) *BreakerProducer {
	if logger == nil {
		logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerProducer{next: next, cb: cb}
}

func (p *BreakerProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	_, err := p.cb.Execute(func() (any, error) {
		return nil, p.next.Publish(ctx, topic, key, payload, headers)
	})
	return err
}

func (p *BreakerProducer) State() gobreaker.State {
	return p.cb.State()
}
