package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger configures slog with colored output for developer environments and JSON
// elsewhere. LOG_LEVEL overrides the default info level.
func NewLogger(env string) *slog.Logger {
	return newLogger(env, os.Getenv("LOG_LEVEL"), os.Stdout)
}

func newLogger(env, level string, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)
	switch env {
	case "dev", "local":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	case "test":
		return slog.New(tint.NewHandler(w, &tint.Options{Level: lvl, NoColor: true}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: true,
		}))
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
