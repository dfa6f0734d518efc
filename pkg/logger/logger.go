package logger

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Options configures the root logger.
type Options struct {
	Env       string // "development" selects the text handler, anything else JSON
	Level     string // debug, info, warn, error
	SentryDSN string // errors are also shipped to Sentry when set
}

// New builds the root logger. When Sentry cannot be initialised the logger
// falls back to stdout only and the returned error explains why.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var base slog.Handler
	if opts.Env == "development" {
		base = slog.NewTextHandler(w, handlerOpts)
	} else {
		base = slog.NewJSONHandler(w, handlerOpts)
	}

	if opts.SentryDSN == "" {
		return slog.New(base), nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.Env,
	})
	if err != nil {
		return slog.New(base), err
	}

	sentryHandler := slogsentry.Option{Level: slog.LevelError}.NewSentryHandler()
	return slog.New(slogmulti.Fanout(base, sentryHandler)), nil
}

// Flush waits up to timeout for buffered Sentry events to be delivered. It
// reports false when events were still pending at the deadline. Without a
// Sentry client it returns immediately.
func Flush(timeout time.Duration) bool {
	if sentry.CurrentHub().Client() == nil {
		return true
	}
	return sentry.Flush(timeout)
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
