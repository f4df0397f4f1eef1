package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultBodyLimit caps request bodies at 1 MiB.
	DefaultBodyLimit = 1 << 20
	// DefaultReadTimeout bounds reading a full request.
	DefaultReadTimeout = 30 * time.Second
	// DefaultWriteTimeout bounds writing a full response.
	DefaultWriteTimeout = 30 * time.Second
	// DefaultIdleTimeout bounds keep-alive idleness.
	DefaultIdleTimeout = 2 * time.Minute
)

// Limits are the request-size and timeout limits applied by the server.
type Limits struct {
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		BodyLimit:    DefaultBodyLimit,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()

	if l.BodyLimit <= 0 {
		l.BodyLimit = d.BodyLimit
	}

	if l.ReadTimeout <= 0 {
		l.ReadTimeout = d.ReadTimeout
	}

	if l.WriteTimeout <= 0 {
		l.WriteTimeout = d.WriteTimeout
	}

	if l.IdleTimeout <= 0 {
		l.IdleTimeout = d.IdleTimeout
	}

	return l
}

// NewFiberConfig builds the fiber configuration for appName. Zero limits
// fall back to DefaultLimits. A nil errorHandler selects FiberErrorHandler.
func NewFiberConfig(appName string, limits Limits, errorHandler fiber.ErrorHandler) fiber.Config {
	limits = limits.withDefaults()

	if errorHandler == nil {
		errorHandler = FiberErrorHandler
	}

	return fiber.Config{
		AppName:               appName,
		BodyLimit:             limits.BodyLimit,
		ReadTimeout:           limits.ReadTimeout,
		WriteTimeout:          limits.WriteTimeout,
		IdleTimeout:           limits.IdleTimeout,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	}
}
