package core

import (
	"context"

	"github.com/huangsam/repometrics/internal/logger"
)

// Context keys for run options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	loggerKey         contextKey = "logger"
)

// WithSuppressHeader marks the context so no progress headers are printed.
// The MCP server relies on this because stdout carries the protocol.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithLogger attaches the structured logger used by the pipeline stages.
func WithLogger(ctx context.Context, log *logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// loggerFromContext returns the attached logger or a no-op one
func loggerFromContext(ctx context.Context) *logger.Logger {
	if log, ok := ctx.Value(loggerKey).(*logger.Logger); ok && log != nil {
		return log
	}
	return logger.NewNop()
}
