package middleware

import (
	"context"
	"log/slog"

	"rento/internal/app/commands"
	"rento/internal/app/outbox"
)

// OutboxFlush opens an event buffer for the command and flushes it after the inner
// layers, including the transaction, have succeeded. A failed flush is logged: the
// state change is already committed.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			scoper, scoped := box.(outbox.Scoper)
			if scoped {
				ctx = scoper.Scope(ctx)
			}
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if scoped {
					scoper.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				logger.Error("outbox flush failed", "command", cmd.Key(), "error", err)
			}
			return res, nil
		})
	}
}
