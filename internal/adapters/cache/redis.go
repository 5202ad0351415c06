package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	TLSConfig *tls.Config
}

// Redis stores results as MessagePack values with a TTL.
type Redis struct {
	client redis.UniversalClient
}

// cachedResult is the stored form; the tier and confidence are re-derived on
// read so they always follow the current rules.
type cachedResult struct {
	Label   int        `msgpack:"l"`
	Classes [2]float64 `msgpack:"p"`
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		TLSConfig: opts.TLSConfig,
		Addr:      opts.Address,
		Password:  opts.Password,
		DB:        opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Address, err)
	}
	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

var _ ports.ResultCache = (*Redis)(nil)

// Get returns the cached result for key.
func (r *Redis) Get(ctx context.Context, key string) (domain.Result, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Result{}, false, nil
	}
	if err != nil {
		return domain.Result{}, false, err
	}

	var cr cachedResult
	if err := msgpack.Unmarshal(data, &cr); err != nil {
		return domain.Result{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	label := domain.Label(cr.Label)
	if !label.Valid() {
		return domain.Result{}, false, fmt.Errorf("decode cached result: unknown class %d", cr.Label)
	}
	return domain.NewResult(label, domain.Distribution(cr.Classes)), true, nil
}

// Set stores result under key for ttl (0 means no expiry).
func (r *Redis) Set(ctx context.Context, key string, result domain.Result, ttl time.Duration) error {
	data, err := msgpack.Marshal(cachedResult{
		Label:   int(result.Label),
		Classes: result.Distribution,
	})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
