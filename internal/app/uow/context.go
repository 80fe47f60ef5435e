package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}

// Scope is a unit of work resolved for one handler invocation. When the unit came from
// the context the caller owns it and Finish is a no-op.
type Scope struct {
	Unit    UnitOfWork
	Ctx     context.Context
	managed bool
	done    bool
}

// Join returns the unit already in ctx or begins a new one from factory.
func Join(ctx context.Context, factory UoWFactory, opts TxOptions) (*Scope, error) {
	if unit, ok := FromContext(ctx); ok {
		return &Scope{Unit: unit, Ctx: ctx}, nil
	}
	if factory == nil {
		return nil, ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Scope{Unit: unit, Ctx: ContextWithUnitOfWork(ctx, unit), managed: true}, nil
}

// Commit commits a unit begun by Join.
func (s *Scope) Commit() error {
	if !s.managed || s.done {
		return nil
	}
	s.done = true
	return s.Unit.Commit(s.Ctx)
}

// Close rolls back a unit begun by Join unless it was committed. Safe to defer.
func (s *Scope) Close() {
	if !s.managed || s.done {
		return
	}
	s.done = true
	_ = s.Unit.Rollback(s.Ctx)
}
