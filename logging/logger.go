// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer LifecycleLogger with contextual
// helpers (session, generation) and domain specific logging helpers for
// rotations, breaker transitions and drain outcomes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface for sessionkit. This allows
// users to provide their own logger implementation or use the built-in
// adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// LoggerConfig configures construction of a LifecycleLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	SessionID string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// LifecycleLogger wraps slog.Logger adding contextual cloning helpers and
// domain convenience methods for the session lifecycle. It is cheap to copy
// via With* methods.
type LifecycleLogger struct {
	logger    *slog.Logger
	sessionID string
}

// NewLogger builds a LifecycleLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *LifecycleLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &LifecycleLogger{logger: slog.New(handler), sessionID: cfg.SessionID}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithSession attaches a session identifier to every log entry.
func (l *LifecycleLogger) WithSession(sid string) *LifecycleLogger {
	return &LifecycleLogger{logger: l.logger, sessionID: sid}
}

func (l *LifecycleLogger) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(extra)+1)
	if l.sessionID != "" {
		attrs = append(attrs, slog.String("session_id", l.sessionID))
	}
	return append(attrs, extra...)
}

// Debug logs at debug level.
func (l *LifecycleLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *LifecycleLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *LifecycleLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *LifecycleLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *LifecycleLogger) log(level slog.Level, msg string, args ...any) {
	if l.sessionID != "" {
		args = append(args, "session_id", l.sessionID)
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

// LogRotation records the outcome of a rotation attempt.
func (l *LifecycleLogger) LogRotation(sessionID string, fromGen, toGen int64, dur time.Duration, success bool, err error) {
	attrs := l.attrs(
		slog.String("session_id", sessionID),
		slog.Int64("from_generation", fromGen),
		slog.Int64("to_generation", toGen),
		slog.Duration("duration", dur),
		slog.Bool("success", success),
	)
	level := slog.LevelInfo
	msg := "Context rotation completed"
	if !success {
		level = slog.LevelError
		msg = "Context rotation failed"
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogBreakerTransition records a circuit state change.
func (l *LifecycleLogger) LogBreakerTransition(sessionID, from, to string, failures int) {
	l.logger.LogAttrs(context.Background(), slog.LevelWarn, "Rotation breaker transition", l.attrs(
		slog.String("session_id", sessionID),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("consecutive_failures", failures),
	)...)
}

// LogDrainTimeout records a drain that expired with operations still pending.
func (l *LifecycleLogger) LogDrainTimeout(sessionID string, pending int, timeout time.Duration) {
	l.logger.LogAttrs(context.Background(), slog.LevelWarn, "Drain timed out; forcing swap", l.attrs(
		slog.String("session_id", sessionID),
		slog.Int("pending_operations", pending),
		slog.Duration("timeout", timeout),
	)...)
}

// NewSlogLogger creates a new LifecycleLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *LifecycleLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
