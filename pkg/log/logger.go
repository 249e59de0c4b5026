package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Field is one structured key/value attached to a log message.
type Field struct {
	Key   string
	Value any
}

// Str returns a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int returns an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Err returns an "error" field.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Component tags log output with a component name.
func Component(name string) Field { return Field{Key: "component", Value: name} }

// Any returns a field with an arbitrary value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is the logging interface used across the SDK. Internal failures
// (dropped batches, stream parse errors) are reported through it.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a derived logger carrying additional fields.
	With(fields ...Field) Logger

	// SetLevel sets the minimum log level.
	SetLevel(level Level)
}

// LoggerOption configures a logger under construction.
type LoggerOption func(*BaseLogger)

// BaseLogger implements Logger on top of log/slog via a bridge handler,
// preserving our formatter/output pipeline.
type BaseLogger struct {
	level     *levelVar
	formatter Formatter
	outputs   []Output
	sl        *slog.Logger
}

// NewLogger creates a new logger with the given options. Without options the
// logger writes text to the console at InfoLevel.
func NewLogger(options ...LoggerOption) Logger {
	l := &BaseLogger{
		level:     &levelVar{},
		formatter: &TextFormatter{},
	}
	l.level.set(InfoLevel)
	for _, option := range options {
		option(l)
	}
	if len(l.outputs) == 0 {
		l.outputs = append(l.outputs, NewConsoleOutput())
	}
	l.sl = slog.New(newBridgeHandler(l))
	return l
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level.set(level) }
}

// WithFormatter sets the log formatter.
func WithFormatter(f Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = f }
}

// WithOutput adds an output to the logger.
func WithOutput(o Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, o) }
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *BaseLogger) log(level slog.Level, msg string, fields []Field) {
	l.sl.LogAttrs(context.Background(), level, msg, attrsFromFields(fields)...)
}

// With returns a derived logger sharing level, formatter, and outputs.
func (l *BaseLogger) With(fields ...Field) Logger {
	nl := *l
	attrs := attrsFromFields(fields)
	args := make([]any, len(attrs))
	for i := range attrs {
		args[i] = attrs[i]
	}
	nl.sl = l.sl.With(args...)
	return &nl
}

// SetLevel sets the minimum log level for this logger and all loggers derived
// from it.
func (l *BaseLogger) SetLevel(level Level) { l.level.set(level) }

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level { return l.level.get() }

func attrsFromFields(fields []Field) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	return attrs
}
