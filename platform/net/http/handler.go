package http

import (
	"context"
	"time"

	"github.com/ManojKamatam/LoginApp/platform/lifecycle"
	"github.com/gofiber/fiber/v2"
)

const (
	statusAvailable = "available"
	statusDegraded  = "degraded"

	defaultCheckTimeout = 2 * time.Second
)

// Ping returns HTTP Status 200 with response "pong".
func Ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// DependencyCheck is one dependency reported by HealthWithDependencies.
type DependencyCheck struct {
	Name string
	// HealthCheck returns nil when the dependency is usable.
	HealthCheck func(ctx context.Context) error
}

type dependencyStatus struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthWithDependencies reports "available" (200) when every check passes
// and "degraded" (503) otherwise. Each check gets a short timeout.
func HealthWithDependencies(checks ...DependencyCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(checks) == 0 {
			return c.JSON(fiber.Map{"status": statusAvailable})
		}

		status := statusAvailable
		deps := make(map[string]dependencyStatus, len(checks))

		for _, check := range checks {
			if check.HealthCheck == nil {
				deps[check.Name] = dependencyStatus{Healthy: true}
				continue
			}

			ctx, cancel := context.WithTimeout(c.UserContext(), defaultCheckTimeout)
			err := check.HealthCheck(ctx)
			cancel()

			if err != nil {
				status = statusDegraded
				deps[check.Name] = dependencyStatus{Healthy: false, Error: err.Error()}

				continue
			}

			deps[check.Name] = dependencyStatus{Healthy: true}
		}

		code := fiber.StatusOK
		if status == statusDegraded {
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status":       status,
			"dependencies": deps,
		})
	}
}

// PhaseReporter exposes the current lifecycle phase.
type PhaseReporter interface {
	Phase() lifecycle.Phase
}

// Readiness answers 200 only while the host is Started. Once Stopping begins
// it answers 503 "draining" so load balancers stop routing new requests
// during the drain delay.
func Readiness(reporter PhaseReporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		phase := reporter.Phase()

		switch phase {
		case lifecycle.Started:
			return c.JSON(fiber.Map{"status": "ready", "phase": phase.String()})
		case lifecycle.NotStarted:
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "starting", "phase": phase.String()})
		default:
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "draining", "phase": phase.String()})
		}
	}
}
