package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionKeyPrefix namespaces session entries in Redis.
	DefaultSessionKeyPrefix = "session:"

	sessionStorageTimeout = 3 * time.Second
	sessionResetBatch     = 100
)

// ErrNilSessionRedisClient is returned by NewRedisSessionStorage when client is nil.
var ErrNilSessionRedisClient = errors.New("session storage redis client is nil")

var _ fiber.Storage = (*RedisSessionStorage)(nil)

// RedisSessionStorage keeps fiber session state in Redis so a session
// issued by one host is readable by every host sharing the server.
type RedisSessionStorage struct {
	client redis.Cmdable
	prefix string
}

// NewRedisSessionStorage wraps client. An empty prefix uses DefaultSessionKeyPrefix.
func NewRedisSessionStorage(client redis.Cmdable, prefix string) (*RedisSessionStorage, error) {
	if client == nil {
		return nil, ErrNilSessionRedisClient
	}

	if prefix == "" {
		prefix = DefaultSessionKeyPrefix
	}

	return &RedisSessionStorage{client: client, prefix: prefix}, nil
}

func (s *RedisSessionStorage) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), sessionStorageTimeout)
}

// Get returns the stored value, or nil when key does not exist.
func (s *RedisSessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	ctx, cancel := s.context()
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", key, err)
	}

	return val, nil
}

// Set stores val under key; exp <= 0 keeps it without expiry.
func (s *RedisSessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	ctx, cancel := s.context()
	defer cancel()

	if exp < 0 {
		exp = 0
	}

	if err := s.client.Set(ctx, s.prefix+key, val, exp).Err(); err != nil {
		return fmt.Errorf("set session %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (s *RedisSessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}

	ctx, cancel := s.context()
	defer cancel()

	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset removes every session under the prefix.
func (s *RedisSessionStorage) Reset() error {
	ctx, cancel := s.context()
	defer cancel()

	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", sessionResetBatch).Result()
		if err != nil {
			return fmt.Errorf("scan sessions: %w", err)
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete sessions: %w", err)
			}
		}

		if next == 0 {
			return nil
		}

		cursor = next
	}
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisSessionStorage) Close() error { return nil }
