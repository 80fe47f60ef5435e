package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

type flakyPublisher struct {
	calls int
}

func (p *flakyPublisher) Publish(context.Context, string, string, []byte, map[string]string) error {
	p.calls++
	return errors.New("broker unavailable")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyPublisher{}
	producer := NewBreakerProducer("test", inner, nil)
	for i := 0; i < 3; i++ {
		if err := producer.Publish(context.Background(), "t", "k", nil, nil); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}
	if producer.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", producer.State())
	}
	err := producer.Publish(context.Background(), "t", "k", nil, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("open breaker must not reach the broker, calls=%d", inner.calls)
	}
}
