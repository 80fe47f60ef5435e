package commands

import (
	"context"
	"errors"
	"testing"
)

type greet struct{ Name string }

func (greet) Key() string { return "greet" }

type other struct{}

func (other) Key() string { return "other" }

func TestDispatchTyped(t *testing.T) {
	reg := NewRegistry()
	Register[greet, string](reg, "greet", HandlerFunc[greet, string](func(_ context.Context, cmd greet) (string, error) {
		return "hello " + cmd.Name, nil
	}))
	got, err := Dispatch[greet, string](context.Background(), reg, greet{Name: "rento"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "hello rento" {
		t.Fatalf("unexpected result %q", got)
	}
	if _, err := Dispatch[greet, int](context.Background(), reg, greet{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
	if _, err := reg.Dispatch(context.Background(), other{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	reg := NewRegistry()
	h := HandlerFunc[greet, string](func(context.Context, greet) (string, error) { return "", nil })
	Register[greet, string](reg, "greet", h)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	Register[greet, string](reg, "greet", h)
}
