package logging

import (
	"context"

	"github.com/storemover/smi/pkg/config"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const loggerContextKey = contextKey("smi.logger")

// WithContext returns a context carrying the given logger. The telemetry
// scope uses this to hand an operation-scoped logger to everything running
// inside one instrumented call.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from the context.
// If no logger is present, it returns a default logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return New(defaultLogConfig())
}

// defaultLogConfig returns a default log configuration.
func defaultLogConfig() config.LogConfig {
	return config.LogConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}
}
