package kv

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	apperrors "trade-journal/internal/errors"
)

// DefaultRedisPrefix namespaces journal keys inside a shared redis database.
const DefaultRedisPrefix = "journal:"

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	parseRedisURL = redis.ParseURL
)

// RedisOptions builds client options from either a host:port address or a
// redis:// / rediss:// URL.
func RedisOptions(addr string) (*redis.Options, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := parseRedisURL(addr)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrConfigInvalid, err.Error())
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

// Redis stores keys in redis under a common prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a redis-backed store. No connection is made until the
// first command.
func NewRedis(addr, prefix string) (*Redis, error) {
	opts, err := RedisOptions(addr)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: newRedisClient(opts), prefix: prefix}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewStorageError("redis", "ping", "", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewStorageError("redis", "get", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return apperrors.NewStorageError("redis", "set", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return apperrors.NewStorageError("redis", "remove", key, err)
	}
	return nil
}

// Clear deletes only the keys under this store's prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return apperrors.NewStorageError("redis", "clear", "", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewStorageError("redis", "clear", "", err)
	}
	return nil
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
