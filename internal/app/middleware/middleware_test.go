package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"rento/internal/app/commands"
	"rento/internal/app/outbox"
	"rento/internal/app/uow"
	"rento/internal/domain/shared/fault"
)

type reserveCmd struct {
	key string
}

func (reserveCmd) Key() string              { return "test.reserve" }
func (c reserveCmd) IdempotencyKey() string { return c.key }
func (reserveCmd) ResultPrototype() any     { return &reserveResult{} }

type reserveResult struct {
	N int `json:"n"`
}

type mapStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

func countingBus(calls *int, fail error) commands.Bus {
	reg := commands.NewRegistry()
	commands.Register[reserveCmd, *reserveResult](reg, "test.reserve", commands.HandlerFunc[reserveCmd, *reserveResult](
		func(context.Context, reserveCmd) (*reserveResult, error) {
			*calls++
			if fail != nil {
				return nil, fail
			}
			return &reserveResult{N: *calls}, nil
		}))
	return reg
}

func TestIdempotencyReplaysResult(t *testing.T) {
	calls := 0
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(countingBus(&calls, nil), Idempotency(store, nil, nil))

	first, err := commands.Dispatch[reserveCmd, *reserveResult](context.Background(), bus, reserveCmd{key: "u1:k"})
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := commands.Dispatch[reserveCmd, *reserveResult](context.Background(), bus, reserveCmd{key: "u1:k"})
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if calls != 1 || first.N != second.N {
		t.Fatalf("expected replay, calls=%d first=%d second=%d", calls, first.N, second.N)
	}
	if _, err := commands.Dispatch[reserveCmd, *reserveResult](context.Background(), bus, reserveCmd{}); err != nil || calls != 2 {
		t.Fatalf("empty key must bypass the store, calls=%d err=%v", calls, err)
	}
}

func TestIdempotencyReplaysClassifiedErrorsOnly(t *testing.T) {
	calls := 0
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	conflict := fault.New(fault.Conflict, "taken")
	bus := ChainCommands(countingBus(&calls, conflict), Idempotency(store, nil, nil))
	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), reserveCmd{key: "k"})
		if fault.KindOf(err) != fault.Conflict || fault.Message(err) != "taken" {
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}

	calls = 0
	bus = ChainCommands(countingBus(&calls, errors.New("db down")), Idempotency(&mapStore{items: map[string]IdempotencyRecord{}}, nil, nil))
	_, _ = bus.Dispatch(context.Background(), reserveCmd{key: "k"})
	_, _ = bus.Dispatch(context.Background(), reserveCmd{key: "k"})
	if calls != 2 {
		t.Fatalf("internal errors must not be replayed, calls=%d", calls)
	}
}

type fakeUnit struct {
	uow.UnitOfWork
	committed  bool
	rolledBack bool
}

func (u *fakeUnit) Commit(context.Context) error   { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error { u.rolledBack = true; return nil }

type fakeFactory struct{ units []*fakeUnit }

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

type sliceSink struct{ records []outbox.EventRecord }

func (s *sliceSink) Append(_ context.Context, records []outbox.EventRecord) error {
	s.records = append(s.records, records...)
	return nil
}

func TestTransactionAndOutboxOrdering(t *testing.T) {
	for _, tc := range []struct {
		name       string
		fail       error
		wantCommit bool
		wantEvents int
	}{
		{"success", nil, true, 1},
		{"failure", fault.New(fault.Validation, "bad"), false, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			factory := &fakeFactory{}
			sink := &sliceSink{}
			box := outbox.NewBuffered(sink)
			reg := commands.NewRegistry()
			commands.Register[reserveCmd, *reserveResult](reg, "test.reserve", commands.HandlerFunc[reserveCmd, *reserveResult](
				func(ctx context.Context, _ reserveCmd) (*reserveResult, error) {
					if _, ok := uow.FromContext(ctx); !ok {
						t.Fatalf("unit of work missing")
					}
					if err := box.Add(ctx, outbox.EventRecord{ID: "e1"}); err != nil {
						return nil, err
					}
					if tc.fail != nil {
						return nil, tc.fail
					}
					return &reserveResult{}, nil
				}))
			bus := ChainCommands(reg, OutboxFlush(box, nil), Transaction(factory, nil))
			_, _ = bus.Dispatch(context.Background(), reserveCmd{})

			unit := factory.units[0]
			if unit.committed != tc.wantCommit || unit.rolledBack == tc.wantCommit {
				t.Fatalf("commit=%v rollback=%v", unit.committed, unit.rolledBack)
			}
			if len(sink.records) != tc.wantEvents {
				t.Fatalf("expected %d flushed events, got %d", tc.wantEvents, len(sink.records))
			}
		})
	}
}
