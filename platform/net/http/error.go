package http

import (
	"context"
	"errors"
	"strconv"

	"github.com/ManojKamatam/LoginApp/platform"
	libLog "github.com/ManojKamatam/LoginApp/platform/log"
	libOpentelemetry "github.com/ManojKamatam/LoginApp/platform/opentelemetry"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// ErrorResponse is the JSON body of every error the host renders.
type ErrorResponse struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// WriteError writes a structured error response.
func WriteError(c *fiber.Ctx, status int, title, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Code:    strconv.Itoa(status),
		Title:   title,
		Message: message,
	})
}

// FiberErrorHandler is the canonical fiber error handler. Framework errors
// keep their status; anything else becomes a generic 500 and is logged with
// the request logger.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return WriteError(c, fe.Code, DefaultErrorTitle, fe.Message)
	}

	logHandlerError(c, err)

	return WriteError(c, fiber.StatusInternalServerError, "internal_error", "internal server error")
}

// ErrorPageHandler wraps FiberErrorHandler so browser requests that fail with
// a 5xx are redirected to path instead of seeing a JSON body.
func ErrorPageHandler(path string) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		if status < fiber.StatusInternalServerError || c.Path() == path || c.Accepts(fiber.MIMETextHTML) != fiber.MIMETextHTML {
			return FiberErrorHandler(c, err)
		}

		if fe == nil {
			logHandlerError(c, err)
		}

		return c.Redirect(path, fiber.StatusFound)
	}
}

func logHandlerError(c *fiber.Ctx, err error) {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	libOpentelemetry.HandleSpanError(trace.SpanFromContext(ctx), "handler error", err)

	logger := platform.NewLoggerFromContext(ctx)
	logger.Log(ctx, libLog.LevelError, "handler error",
		libLog.String("method", c.Method()),
		libLog.String("path", c.Path()),
		libLog.Err(err),
	)
}
