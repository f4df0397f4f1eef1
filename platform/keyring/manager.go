package keyring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ManojKamatam/LoginApp/platform/log"
)

const (
	// DefaultKeyLifetime is the key lifetime applied when none is configured.
	DefaultKeyLifetime = 7 * 24 * time.Hour
	// MinKeyLifetime is the shortest lifetime accepted.
	MinKeyLifetime = 7 * 24 * time.Hour
)

var (
	// ErrEmptyApplicationName is returned when Config.ApplicationName is blank.
	ErrEmptyApplicationName = errors.New("data-protection application name is empty")
	// ErrKeyLifetimeTooShort is returned when Config.KeyLifetime is below MinKeyLifetime.
	ErrKeyLifetimeTooShort = errors.New("data-protection key lifetime is shorter than 7 days")
	// ErrNilStore is returned when NewManager receives a nil store.
	ErrNilStore = errors.New("data-protection key store is nil")
)

// Config scopes and ages keys.
type Config struct {
	ApplicationName string
	KeyLifetime     time.Duration
}

func (c *Config) normalize() error {
	c.ApplicationName = strings.TrimSpace(c.ApplicationName)
	if c.ApplicationName == "" {
		return ErrEmptyApplicationName
	}

	if c.KeyLifetime == 0 {
		c.KeyLifetime = DefaultKeyLifetime
	}

	if c.KeyLifetime < MinKeyLifetime {
		return fmt.Errorf("%w: got %s", ErrKeyLifetimeTooShort, c.KeyLifetime)
	}

	return nil
}

// Manager selects and rotates keys.
type Manager struct {
	cfg    Config
	store  Store
	logger log.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewManager validates cfg and binds it to store.
func NewManager(cfg Config, store Store, logger log.Logger) (*Manager, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	if store == nil {
		return nil, ErrNilStore
	}

	logger = log.OrNop(logger)

	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logger.With(log.String("application", cfg.ApplicationName)),
		now:    time.Now,
	}, nil
}

// Config returns the normalized configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// CurrentKey returns the newest key active now, minting and persisting one
// when no stored key is usable.
func (m *Manager) CurrentKey(ctx context.Context) (Key, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()

	keys, err := m.store.List(ctx, m.cfg.ApplicationName)
	if err != nil {
		return Key{}, err
	}

	var (
		current Key
		found   bool
	)

	for _, key := range keys {
		if err := key.validate(); err != nil {
			m.logger.Log(ctx, log.LevelWarn, "skipping unusable data-protection key", log.Err(err))
			continue
		}

		if !key.ActiveAt(now) {
			continue
		}

		if !found || key.CreatedAt.After(current.CreatedAt) {
			current, found = key, true
		}
	}

	if found {
		return current, nil
	}

	key, err := newKey(now, m.cfg.KeyLifetime)
	if err != nil {
		return Key{}, err
	}

	if err := m.store.Save(ctx, m.cfg.ApplicationName, key); err != nil {
		return Key{}, err
	}

	m.logger.Log(ctx, log.LevelInfo, "created data-protection key",
		log.String("key_id", key.ID.String()),
		log.Time("expires_at", key.ExpiresAt),
	)

	return key, nil
}
