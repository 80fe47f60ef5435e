package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "rento/internal/app/outbox"
	infraoutbox "rento/internal/infra/outbox"
)

type outboxEntry struct {
	record    appoutbox.EventRecord
	attempts  int
	next      time.Time
	claimed   bool
	lastError string
}

// Outbox is an in-process outbox sink and relay queue.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Append(ctx context.Context, records []appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, rec := range records {
		o.entries = append(o.entries, &outboxEntry{record: rec, next: now})
	}
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range o.entries {
		if e.claimed || e.next.After(now) {
			continue
		}
		e.claimed = true
		return &infraoutbox.Message{Record: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	// Sent entries are dropped so the queue does not grow without bound.
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.record.ID != id {
			kept = append(kept, e)
		}
	}
	o.entries = kept
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.record.ID == id {
			e.claimed = false
			e.attempts++
			e.next = next
			e.lastError = errMsg
		}
	}
	return nil
}

// Pending returns records that have not been sent yet.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.record)
	}
	return out
}

var (
	_ appoutbox.Sink    = (*Outbox)(nil)
	_ infraoutbox.Queue = (*Outbox)(nil)
)
