//go:build unit

package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiberConfigDefaults(t *testing.T) {
	cfg := NewFiberConfig("LoginApp", Limits{}, nil)

	assert.Equal(t, "LoginApp", cfg.AppName)
	assert.Equal(t, DefaultBodyLimit, cfg.BodyLimit)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
	assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)
	assert.True(t, cfg.DisableStartupMessage)
	assert.NotNil(t, cfg.ErrorHandler)
}

func TestNewFiberConfigKeepsExplicitLimits(t *testing.T) {
	cfg := NewFiberConfig("LoginApp", Limits{BodyLimit: 64, ReadTimeout: time.Second}, nil)

	assert.Equal(t, 64, cfg.BodyLimit)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
}

func TestBodyLimitRejectsLargeRequests(t *testing.T) {
	app := fiber.New(NewFiberConfig("LoginApp", Limits{BodyLimit: 16}, nil))
	app.Post("/echo", func(c *fiber.Ctx) error { return c.Send(c.Body()) })

	small := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("tiny"))
	resp, err := app.Test(small)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	large := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	resp, err = app.Test(large)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
