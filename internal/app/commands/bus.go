package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type route func(ctx context.Context, cmd Command) (any, error)

// Registry is an in-process Bus. Registration normally happens once at startup.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]route
}

func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]route)}
}

func (r *Registry) Dispatch(ctx context.Context, cmd Command) (any, error) {
	if cmd == nil {
		return nil, ErrInvalidCommand
	}
	r.mu.RLock()
	fn, ok := r.routes[cmd.Key()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return fn(ctx, cmd)
}

// Keys lists registered command keys in order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register binds a typed handler to key. Registering a key twice panics.
func Register[C Command, R any](r *Registry, key string, handler Handler[C, R]) {
	if r == nil {
		panic("commands: nil registry")
	}
	if key == "" || handler == nil {
		panic("commands: key and handler are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.routes[key]; exists {
		panic("commands: duplicate registration for " + key)
	}
	r.routes[key] = func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := raw.(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, key)
		}
		return handler.Handle(ctx, cmd)
	}
}
