package outbox

import (
	"context"
	"sync"
)

type bufferKey struct{}

type buffer struct {
	mu      sync.Mutex
	records []EventRecord
}

// Buffered collects records per command scope and appends them to the sink on Flush.
// Records added outside a scope go straight to the sink.
type Buffered struct {
	sink Sink
}

func NewBuffered(sink Sink) *Buffered {
	if sink == nil {
		panic("outbox: sink required")
	}
	return &Buffered{sink: sink}
}

func (b *Buffered) Scope(ctx context.Context) context.Context {
	return context.WithValue(ctx, bufferKey{}, &buffer{})
}

func (b *Buffered) Add(ctx context.Context, record EventRecord) error {
	buf, ok := ctx.Value(bufferKey{}).(*buffer)
	if !ok {
		return b.sink.Append(ctx, []EventRecord{record})
	}
	buf.mu.Lock()
	buf.records = append(buf.records, record)
	buf.mu.Unlock()
	return nil
}

func (b *Buffered) Flush(ctx context.Context) error {
	records := take(ctx)
	if len(records) == 0 {
		return nil
	}
	return b.sink.Append(ctx, records)
}

func (b *Buffered) Discard(ctx context.Context) {
	_ = take(ctx)
}

func take(ctx context.Context) []EventRecord {
	buf, ok := ctx.Value(bufferKey{}).(*buffer)
	if !ok {
		return nil
	}
	buf.mu.Lock()
	defer buf.mu.Unlock()
	records := buf.records
	buf.records = nil
	return records
}

var (
	_ Outbox = (*Buffered)(nil)
	_ Scoper = (*Buffered)(nil)
)
