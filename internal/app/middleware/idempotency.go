package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"rento/internal/app/commands"
	"rento/internal/domain/shared/fault"
)

// IdempotentCommand is implemented by commands that may carry a client idempotency key.
type IdempotentCommand interface {
	commands.Command
	// IdempotencyKey must already be scoped to the caller.
	IdempotencyKey() string
	ResultPrototype() any
}

// IdempotencyRecord stores either a result payload or a classified failure.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	ErrorKind  fault.Kind
	Error      string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency replays the stored outcome of a previously seen key. Internal failures are
// not stored so the client can retry them.
func Idempotency(store IdempotencyStore, codec ResultCodec, logger *slog.Logger) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				logger.Info("idempotent replay", "command", cmd.Key(), "key", key)
				return replay(rec, idCmd, codec)
			}

			result, err := next.Dispatch(ctx, cmd)
			record := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if err != nil {
				kind := fault.KindOf(err)
				if kind == fault.Internal {
					return nil, err
				}
				record.ErrorKind = kind
				record.Error = fault.Message(err)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					logger.Warn("idempotency save failed", "key", key, "error", saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				logger.Warn("idempotency save failed", "key", key, "error", saveErr)
			}
			return result, nil
		})
	}
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec) (any, error) {
	if rec.Error != "" {
		return nil, fault.New(rec.ErrorKind, rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return proto, nil
}
