package http

import (
	"github.com/ManojKamatam/LoginApp/platform/log"
	"github.com/ManojKamatam/LoginApp/platform/runtime"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// hstsMaxAge is one year, in seconds.
const hstsMaxAge = 365 * 24 * 60 * 60

// WithSecurityHeaders sets the standard security headers. HSTS is only sent
// outside development, and only over HTTPS.
func WithSecurityHeaders(development bool) fiber.Handler {
	cfg := helmet.Config{
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}

	if !development {
		cfg.HSTSMaxAge = hstsMaxAge
	}

	return helmet.New(cfg)
}

// WithRecover turns handler panics into 500 responses and logs them.
func WithRecover(logger log.Logger) fiber.Handler {
	logger = log.OrNop(logger)

	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			requestLogger := logger.With(
				log.String("method", c.Method()),
				log.String("path", c.Path()),
			)

			runtime.HandlePanicValue(c.UserContext(), requestLogger, e, "http", "handler")
		},
	})
}

// WithDataProtection encrypts every cookie except the listed ones with the
// base64 encoded data-protection key.
func WithDataProtection(encodedKey string, except ...string) fiber.Handler {
	return encryptcookie.New(encryptcookie.Config{
		Key:    encodedKey,
		Except: except,
	})
}
