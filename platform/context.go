package platform

import (
	"context"

	"github.com/ManojKamatam/LoginApp/platform/log"
)

type loggerContextKey struct{}

// ContextWithLogger returns a child context carrying logger.
func ContextWithLogger(ctx context.Context, logger log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// NewLoggerFromContext extracts the request logger, or a no-op logger when
// none was attached.
//
//nolint:ireturn
func NewLoggerFromContext(ctx context.Context) log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerContextKey{}).(log.Logger); ok && logger != nil {
			return logger
		}
	}

	return log.NewNop()
}
