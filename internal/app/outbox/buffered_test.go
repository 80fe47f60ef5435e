package outbox

import (
	"context"
	"testing"
	"time"
)

type captureSink struct {
	batches [][]EventRecord
}

func (s *captureSink) Append(_ context.Context, records []EventRecord) error {
	s.batches = append(s.batches, records)
	return nil
}

type pinged struct{ at time.Time }

func (p pinged) EventName() string     { return "test.pinged" }
func (p pinged) AggregateID() string   { return "agg-1" }
func (p pinged) OccurredAt() time.Time { return p.at }

func TestBufferedHoldsRecordsUntilFlush(t *testing.T) {
	sink := &captureSink{}
	box := NewBuffered(sink)
	ctx := box.Scope(context.Background())

	rec, err := JSONEventEncoder{}.Encode(pinged{at: time.Now()})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if rec.ID == "" || rec.Name != "test.pinged" || rec.Aggregate != "agg-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if err := box.Add(ctx, rec); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(sink.batches) != 0 {
		t.Fatalf("records reached sink before flush")
	}
	if err := box.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(sink.batches) != 1 || len(sink.batches[0]) != 1 {
		t.Fatalf("expected one batch with one record, got %+v", sink.batches)
	}
	if err := box.Flush(ctx); err != nil || len(sink.batches) != 1 {
		t.Fatalf("second flush should be empty")
	}
}

func TestBufferedDiscard(t *testing.T) {
	sink := &captureSink{}
	box := NewBuffered(sink)
	ctx := box.Scope(context.Background())
	_ = box.Add(ctx, EventRecord{ID: "1"})
	box.Discard(ctx)
	if err := box.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(sink.batches) != 0 {
		t.Fatalf("discarded records were flushed")
	}
}

func TestBufferedWithoutScopeWritesThrough(t *testing.T) {
	sink := &captureSink{}
	box := NewBuffered(sink)
	if err := box.Add(context.Background(), EventRecord{ID: "1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(sink.batches) != 1 {
		t.Fatalf("expected write-through, got %d batches", len(sink.batches))
	}
}
