package keyring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ManojKamatam/LoginApp/platform/log"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dataprotection:keys:"

// ErrNilRedisClient is returned by NewRedisStore when client is nil.
var ErrNilRedisClient = errors.New("redis client is nil")

// RedisStore keeps every application's keys in one hash: field = key id,
// value = JSON encoded Key.
type RedisStore struct {
	client redis.Cmdable
	logger log.Logger
}

// NewRedisStore wraps a connected go-redis client. Entries that cannot be
// decoded are reported to logger and skipped.
func NewRedisStore(client redis.Cmdable, logger log.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}

	return &RedisStore{client: client, logger: log.OrNop(logger)}, nil
}

func hashKey(application string) string {
	return redisKeyPrefix + application
}

// List decodes the keys stored for application. A corrupt entry is skipped
// so one bad record cannot block every host sharing the hash.
func (s *RedisStore) List(ctx context.Context, application string) ([]Key, error) {
	values, err := s.client.HGetAll(ctx, hashKey(application)).Result()
	if err != nil {
		return nil, fmt.Errorf("list keys for %q: %w", application, err)
	}

	keys := make([]Key, 0, len(values))

	for id, raw := range values {
		var key Key
		if err := json.Unmarshal([]byte(raw), &key); err != nil {
			s.logger.Log(ctx, log.LevelWarn, "skipping undecodable data-protection key",
				log.String("application", application),
				log.String("key_id", id),
				log.Err(err),
			)

			continue
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Save writes key under its id.
func (s *RedisStore) Save(ctx context.Context, application string, key Key) error {
	raw, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode key %s: %w", key.ID, err)
	}

	if err := s.client.HSet(ctx, hashKey(application), key.ID.String(), raw).Err(); err != nil {
		return fmt.Errorf("save key %s for %q: %w", key.ID, application, err)
	}

	return nil
}
