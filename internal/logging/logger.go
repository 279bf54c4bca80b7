package logging

import (
	"context"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the package logger. Development mode writes human readable
// console output; otherwise JSON lines go to stdout.
func Init(isDevelopment bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if isDevelopment {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(lvl).
			With().
			Timestamp().
			Caller().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			Level(lvl).
			With().
			Timestamp().
			Logger()
	}
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// Logger returns the package logger.
func Logger() *zerolog.Logger {
	return &logger
}

// WithContext returns the logger stored in ctx, falling back to the package
// logger.
func WithContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &logger
}

// Info starts an info event on the logger carried by ctx.
func Info(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Info()
}

// Error starts an error event on the logger carried by ctx.
func Error(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Error()
}

// Debug starts a debug event on the logger carried by ctx.
func Debug(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Debug()
}

// Warn starts a warning event on the logger carried by ctx.
func Warn(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Warn()
}

// LogMemoryUsage writes a snapshot of heap usage in megabytes.
func LogMemoryUsage(ctx context.Context, operation string) {
	memoryUsage(Info(ctx), operation)
}

// DebugMemoryUsage is LogMemoryUsage at debug level. The heap is not read
// unless debug logging is enabled.
func DebugMemoryUsage(ctx context.Context, operation string) {
	memoryUsage(Debug(ctx), operation)
}

func memoryUsage(ev *zerolog.Event, operation string) {
	if !ev.Enabled() {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	const mb = 1024 * 1024
	ev.Str("operation", operation).
		Uint64("heap_in_use_mb", m.HeapInuse/mb).
		Uint64("heap_sys_mb", m.HeapSys/mb).
		Uint64("heap_idle_mb", m.HeapIdle/mb).
		Msg("memory usage")
}
