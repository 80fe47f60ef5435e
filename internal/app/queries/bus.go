package queries

import (
	"context"
	"fmt"
	"sync"
)

type route func(ctx context.Context, query Query) (any, error)

// Registry is an in-process Bus.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]route
}

func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]route)}
}

func (r *Registry) Ask(ctx context.Context, query Query) (any, error) {
	if query == nil {
		return nil, ErrInvalidQuery
	}
	r.mu.RLock()
	fn, ok := r.routes[query.Key()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
	}
	return fn(ctx, query)
}

func Register[Q Query, R any](r *Registry, key string, handler Handler[Q, R]) {
	if r == nil {
		panic("queries: nil registry")
	}
	if key == "" || handler == nil {
		panic("queries: key and handler are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.routes[key]; exists {
		panic("queries: duplicate registration for " + key)
	}
	r.routes[key] = func(ctx context.Context, raw Query) (any, error) {
		q, ok := raw.(Q)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, key)
		}
		return handler.Handle(ctx, q)
	}
}
