package lifecycle

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultShutdownTimeout bounds the whole graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
	// DefaultDrainDelay is the grace window held during Stopping.
	DefaultDrainDelay = 5 * time.Second
)

// ErrInvalidConfiguration is matched by every *ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid lifecycle configuration")

// ConfigurationError describes a lifecycle setting that cannot be honored.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ErrInvalidConfiguration.Error()
	}

	return fmt.Sprintf("%s: %s %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfiguration) hold.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// Config holds the two durations the coordinator consumes.
type Config struct {
	// ShutdownTimeout is the host's upper bound on graceful shutdown.
	ShutdownTimeout time.Duration
	// DrainDelay is waited during Stopping. It must be shorter than
	// ShutdownTimeout or the host would force-terminate mid-drain.
	DrainDelay time.Duration
}

// DefaultConfig returns a 30s shutdown timeout with a 5s drain delay.
func DefaultConfig() Config {
	return Config{
		ShutdownTimeout: DefaultShutdownTimeout,
		DrainDelay:      DefaultDrainDelay,
	}
}

// Validate rejects configurations the host could not honor at shutdown time.
func (c Config) Validate() error {
	if c.ShutdownTimeout <= 0 {
		return &ConfigurationError{
			Field:  "ShutdownTimeout",
			Reason: fmt.Sprintf("must be positive, got %s", c.ShutdownTimeout),
		}
	}

	if c.DrainDelay < 0 {
		return &ConfigurationError{
			Field:  "DrainDelay",
			Reason: fmt.Sprintf("must not be negative, got %s", c.DrainDelay),
		}
	}

	if c.DrainDelay >= c.ShutdownTimeout {
		return &ConfigurationError{
			Field:  "DrainDelay",
			Reason: fmt.Sprintf("(%s) must be less than ShutdownTimeout (%s)", c.DrainDelay, c.ShutdownTimeout),
		}
	}

	return nil
}
