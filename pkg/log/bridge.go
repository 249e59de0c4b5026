package log

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// levelVar holds the minimum level, shared between a logger and every logger
// derived from it with With.
type levelVar struct {
	v atomic.Int32
}

func (lv *levelVar) set(l Level) { lv.v.Store(int32(l)) }

func (lv *levelVar) get() Level { return Level(lv.v.Load()) }

// Entry represents a single log entry handed to formatters and outputs.
type Entry struct {
	Level     Level
	Message   string
	Fields    map[string]any
	Timestamp time.Time
}

// bridgeHandler is a slog.Handler that routes records through the logger's
// formatter and outputs.
type bridgeHandler struct {
	logger *BaseLogger
	attrs  []slog.Attr
}

func newBridgeHandler(logger *BaseLogger) *bridgeHandler {
	return &bridgeHandler{logger: logger}
}

// Enabled gates by the logger's level.
func (h *bridgeHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.level.get() <= fromSlogLevel(level)
}

// Handle converts the slog record to an Entry and writes it.
func (h *bridgeHandler) Handle(_ context.Context, r slog.Record) error {
	fields := map[string]any{}
	for i := range h.attrs {
		fields[h.attrs[i].Key] = h.attrs[i].Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	entry := &Entry{
		Level:     fromSlogLevel(r.Level),
		Message:   r.Message,
		Fields:    fields,
		Timestamp: ts,
	}

	formatted, err := h.logger.formatter.Format(entry)
	if err != nil {
		return err
	}
	for _, out := range h.logger.outputs {
		_ = out.Write(entry, formatted)
	}
	return nil
}

// WithAttrs returns a copy of the handler with additional base attributes.
func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	if len(attrs) > 0 {
		nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	}
	return &nh
}

// WithGroup returns the handler unchanged; grouping is not used by our pipeline.
func (h *bridgeHandler) WithGroup(string) slog.Handler { return h }

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level <= slog.LevelDebug:
		return DebugLevel
	case level == slog.LevelInfo:
		return InfoLevel
	case level == slog.LevelWarn:
		return WarnLevel
	default:
		return ErrorLevel
	}
}
