package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// subsystemHandler prefixes each record with the value of the "subsystem"
// attribute so interleaved sender/receiver output stays attributable.
type subsystemHandler struct {
	inner     slog.Handler
	subsystem string
}

func (h *subsystemHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *subsystemHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	subsystem := h.subsystem
	var kept []slog.Attr

	for _, attr := range attrs {
		if attr.Key == "subsystem" {
			subsystem = attr.Value.String()
		} else {
			kept = append(kept, attr)
		}
	}

	return &subsystemHandler{
		inner:     h.inner.WithAttrs(kept),
		subsystem: subsystem,
	}
}

func (h *subsystemHandler) WithGroup(name string) slog.Handler {
	return &subsystemHandler{
		inner:     h.inner.WithGroup(name),
		subsystem: h.subsystem,
	}
}

func (h *subsystemHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.subsystem == "" {
		return h.inner.Handle(ctx, r)
	}

	prefixed := slog.NewRecord(r.Time, r.Level, "["+h.subsystem+"] "+r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		prefixed.AddAttrs(a)
		return true
	})
	return h.inner.Handle(ctx, prefixed)
}

func level() slog.Level {
	switch strings.ToLower(os.Getenv("TIGHTBEAM_LOG")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func init() {
	// main blank-imports this package so the handler becomes the slog default at startup
	handler := &subsystemHandler{
		inner: tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level(),
			TimeFormat: time.TimeOnly,
		}),
	}
	slog.SetDefault(slog.New(handler))
}
