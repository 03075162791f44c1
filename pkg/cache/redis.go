package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisStore. Defaults can be loaded via envdecode.
type RedisConfig struct {
	// Addr like "localhost:6379". ENV: SDLC_REDIS_ADDR
	Addr string `env:"SDLC_REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix for all keys. ENV: SDLC_REDIS_PREFIX
	KeyPrefix string `env:"SDLC_REDIS_PREFIX,default=sdlc:"`
	// TTL of every entry. ENV: SDLC_REDIS_TTL
	TTL time.Duration `env:"SDLC_REDIS_TTL,default=24h"`
}

// RedisStore keeps entries as JSON strings in Redis
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(client, cfg), nil
}

// LoadRedisConfig populates a RedisConfig from the environment
func LoadRedisConfig() (RedisConfig, error) {
	var cfg RedisConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return RedisConfig{}, fmt.Errorf("decode redis config: %w", err)
	}
	return cfg, nil
}

// NewRedisStoreFromEnv builds a RedisStore from LoadRedisConfig
func NewRedisStoreFromEnv(ctx context.Context) (*RedisStore, error) {
	cfg, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}
	return NewRedisStore(ctx, cfg)
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "sdlc:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, keyPrefix: prefix, ttl: ttl}
}

// Close closes the Redis client
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) entryKey(key string) string { return s.keyPrefix + "analysis:" + key }

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry: %w", err)
	}
	return entry, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return s.client.Set(ctx, s.entryKey(key), raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.entryKey(key)).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	pattern := s.keyPrefix + "analysis:*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
