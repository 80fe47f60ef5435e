package middleware

import (
	"context"
	"strings"

	"rento/internal/app/commands"
	"rento/internal/app/queries"
	"rento/internal/domain/shared/fault"
)

var ErrActorMissing = fault.New(fault.Unauthenticated, "Not authorized, no token")

// Attributed messages carry the id of the user they act for.
type Attributed interface {
	ActorID() string
}

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// ActorRequired rejects attributed messages that carry no actor.
type ActorRequired struct{}

func (ActorRequired) Authorize(_ context.Context, message any) error {
	if a, ok := message.(Attributed); ok && strings.TrimSpace(a.ActorID()) == "" {
		return ErrActorMissing
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
