package bootstrap

import (
	"fmt"
	"time"

	"github.com/ManojKamatam/LoginApp/platform"
	"github.com/ManojKamatam/LoginApp/platform/keyring"
	"github.com/ManojKamatam/LoginApp/platform/lifecycle"
	libHTTP "github.com/ManojKamatam/LoginApp/platform/net/http"
)

// ApplicationName names the service in logs, traces and the key ring.
const ApplicationName = "LoginApp"

// Config is the top level configuration struct for the entire application.
type Config struct {
	EnvName                   string        `env:"ENV_NAME" validate:"oneof=production staging development local"`
	LogLevel                  string        `env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	ServerAddress             string        `env:"SERVER_ADDRESS" validate:"required"`
	GRPCHealthAddress         string        `env:"GRPC_HEALTH_ADDRESS"`
	ShutdownTimeout           time.Duration `env:"SHUTDOWN_TIMEOUT"`
	DrainDelay                time.Duration `env:"DRAIN_DELAY"`
	EnableTelemetry           bool          `env:"ENABLE_TELEMETRY"`
	OtelServiceName           string        `env:"OTEL_RESOURCE_SERVICE_NAME" validate:"required"`
	OtelLibraryName           string        `env:"OTEL_LIBRARY_NAME" validate:"required"`
	OtelServiceVersion        string        `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv         string        `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" validate:"required_if=EnableTelemetry true"`
	HealthChecksEnabled       bool          `env:"HEALTH_CHECKS_ENABLED"`
	DataProtectionAppName     string        `env:"DATA_PROTECTION_APP_NAME" validate:"required"`
	DataProtectionKeyLifetime time.Duration `env:"DATA_PROTECTION_KEY_LIFETIME"`
	RedisAddress              string        `env:"REDIS_ADDRESS"`
	RedisPassword             string        `env:"REDIS_PASSWORD"`
	RedisDB                   int           `env:"REDIS_DB" validate:"gte=0"`
	StaticDir                 string        `env:"STATIC_DIR"`
	HTTPBodyLimit             int           `env:"HTTP_BODY_LIMIT" validate:"gte=0"`
	HTTPReadTimeout           time.Duration `env:"HTTP_READ_TIMEOUT"`
	HTTPWriteTimeout          time.Duration `env:"HTTP_WRITE_TIMEOUT"`
	HTTPIdleTimeout           time.Duration `env:"HTTP_IDLE_TIMEOUT"`
}

// DefaultConfig returns the settings used when no variable overrides them.
func DefaultConfig() Config {
	return Config{
		EnvName:                   "production",
		LogLevel:                  "info",
		ServerAddress:             ":8080",
		ShutdownTimeout:           lifecycle.DefaultShutdownTimeout,
		DrainDelay:                lifecycle.DefaultDrainDelay,
		OtelServiceName:           "loginapp",
		OtelLibraryName:           "github.com/ManojKamatam/LoginApp",
		OtelDeploymentEnv:         "production",
		HealthChecksEnabled:       true,
		DataProtectionAppName:     ApplicationName,
		DataProtectionKeyLifetime: keyring.DefaultKeyLifetime,
	}
}

// LoadConfig reads the environment over DefaultConfig.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if err := platform.SetConfigFromEnvVars(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

// Lifecycle returns the coordinator settings.
func (c *Config) Lifecycle() lifecycle.Config {
	return lifecycle.Config{
		ShutdownTimeout: c.ShutdownTimeout,
		DrainDelay:      c.DrainDelay,
	}
}

// Validate checks the lifecycle settings first, then the tagged fields.
func (c *Config) Validate() error {
	if err := c.Lifecycle().Validate(); err != nil {
		return err
	}

	if err := libHTTP.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Development reports whether the environment uses development defaults.
func (c *Config) Development() bool {
	return c.EnvName == "development" || c.EnvName == "local"
}

// HTTPLimits returns the fiber request limits.
func (c *Config) HTTPLimits() libHTTP.Limits {
	return libHTTP.Limits{
		BodyLimit:    c.HTTPBodyLimit,
		ReadTimeout:  c.HTTPReadTimeout,
		WriteTimeout: c.HTTPWriteTimeout,
		IdleTimeout:  c.HTTPIdleTimeout,
	}
}
