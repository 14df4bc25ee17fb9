// Package obslog wires the module's single structured logger: a tinted
// console handler in development, JSON in production, fanned out so the
// engine's per-step log buffer can tap the same stream.
package obslog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Options configures New.
type Options struct {
	// Development selects the tinted console handler; otherwise JSON.
	Development bool
	Level       slog.Level
	Output      io.Writer
	// Extra handlers get fanned every record alongside the primary one
	// (e.g. a step-log-buffer-backed handler installed per case run).
	Extra []slog.Handler
}

// New builds the module-wide logger.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	var primary slog.Handler
	if opts.Development {
		primary = tint.NewHandler(opts.Output, &tint.Options{
			Level:      opts.Level,
			TimeFormat: time.Kitchen,
		})
	} else {
		primary = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{Level: opts.Level})
	}
	handlers := append([]slog.Handler{primary}, opts.Extra...)
	if len(handlers) == 1 {
		return slog.New(primary)
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// stepLogHandler is a minimal slog.Handler that forwards each record's
// message to a sink function — used to additionally route engine log
// lines into the per-case step log buffer via obslog's fanout, without
// internal/engine importing log/slog directly.
type stepLogHandler struct {
	sink func(msg string)
}

// NewSinkHandler returns a slog.Handler that calls sink with each
// record's rendered message, ignoring attrs — for bridging structured
// logs into a plain-string consumer like the engine context's log
// buffer.
func NewSinkHandler(sink func(msg string)) slog.Handler {
	return &stepLogHandler{sink: sink}
}

func (h *stepLogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *stepLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.sink(r.Message)
	return nil
}

func (h *stepLogHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *stepLogHandler) WithGroup(_ string) slog.Handler       { return h }
