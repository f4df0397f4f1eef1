//go:build unit

package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ManojKamatam/LoginApp/platform"
	"github.com/ManojKamatam/LoginApp/platform/log"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedApp(logger log.Logger, opts ...LogMiddlewareOption) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: FiberErrorHandler})
	app.Use(WithHTTPLogging(append([]LogMiddlewareOption{WithCustomLogger(logger)}, opts...)...))

	app.Get("/items", func(c *fiber.Ctx) error {
		platform.NewLoggerFromContext(c.UserContext()).Log(c.UserContext(), log.LevelDebug, "listing items")
		return c.SendString("ok")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.ErrTeapot })
	app.Get(PathHealth, Ping)
	app.Get("/metrics", Ping)

	return app
}

func TestWithHTTPLoggingKeepsIncomingRequestID(t *testing.T) {
	logger := newRecordingLogger()
	app := newLoggedApp(logger)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set(HeaderID, "req-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, "req-123", resp.Header.Get(HeaderID))

	entries := logger.all()
	require.Len(t, entries, 2)

	assert.Equal(t, "listing items", entries[0].msg)
	assert.Equal(t, "req-123", entries[0].fields[HeaderID])

	access := entries[1]
	assert.Equal(t, log.LevelInfo, access.level)
	assert.Contains(t, access.msg, `"GET /items"`)
	assert.Equal(t, http.StatusOK, access.fields["status"])
	assert.Equal(t, "req-123", access.fields[HeaderID])
}

func TestWithHTTPLoggingGeneratesRequestID(t *testing.T) {
	app := newLoggedApp(newRecordingLogger())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items", nil))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Len(t, resp.Header.Get(HeaderID), 36)
}

func TestWithHTTPLoggingRecordsErrorStatus(t *testing.T) {
	logger := newRecordingLogger()
	app := newLoggedApp(logger)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	entries := logger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusTeapot, entries[0].fields["status"])
	assert.True(t, strings.Contains(entries[0].msg, " 418 "))
}

func TestWithHTTPLoggingSkipsPaths(t *testing.T) {
	logger := newRecordingLogger()
	app := newLoggedApp(logger, WithSkipPaths("/metrics"))

	for _, path := range []string{PathHealth, "/metrics"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get(HeaderID))
	}

	assert.Empty(t, logger.all())
}

func TestCLFString(t *testing.T) {
	info := &RequestInfo{
		Method:        "GET",
		URI:           "/Account/Login",
		Referer:       "-",
		RemoteAddress: "10.0.0.1",
		Status:        200,
		Protocol:      "http",
		Size:          12,
		UserAgent:     "curl/8.0",
	}

	clf := info.CLFString()
	assert.True(t, strings.HasPrefix(clf, "10.0.0.1 - - http ["))
	assert.Contains(t, clf, `"GET /Account/Login" 200 12 - curl/8.0`)
	assert.Equal(t, clf, info.String())
}
