package cache

import (
	"context"
	"time"

	"flitz/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory; Password/DB are optional.
func NewRedisCache(cfg *config.RedisConfig) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Addr,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Lease is a time-bounded mutual-exclusion lock over a shared key. Acquire
// succeeds for at most one holder until the TTL expires or Release runs.
// Each grant carries a random token so a holder that outlives its TTL can
// never free a successor's lease.
type Lease struct {
	cache *RedisCache
}

func NewLease(cache *RedisCache) *Lease {
	return &Lease{cache: cache}
}

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire tries to take the lease for key. Returns the holder token to pass
// to Release, or "" if another holder has it. The TTL guards against a
// crashed holder never releasing.
func (l *Lease) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.cache.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// Release frees the lease if token still owns it. Releasing an expired or
// taken-over lease is a no-op.
func (l *Lease) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.cache.Client, []string{key}, token).Err()
}
