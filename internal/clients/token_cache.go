package clients

import (
	"context"
	"encoding/json"
	"time"

	"leadcapture-platform/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const tokenCachePrefix = "client:token:"

// CachedResolver fronts token->client lookups with Redis. Webhook deliveries
// hammer the same token in bursts (provider retries), so the hot path should
// not hit Postgres every time.
//
// Cache is strictly best-effort: any Redis error falls through to the
// repository. Entries expire by TTL; clients are immutable outside the admin
// surface, so a short TTL is enough and no invalidation hook is needed.
type CachedResolver struct {
	inner Resolver
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedResolver(inner Resolver, rdb *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, rdb: rdb, ttl: ttl}
}

func (r *CachedResolver) FindByToken(ctx context.Context, token string) (Client, error) {
	if r.rdb == nil || r.ttl <= 0 {
		return r.inner.FindByToken(ctx, token)
	}

	key := tokenCachePrefix + token
	if raw, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
		var c Client
		if jerr := json.Unmarshal(raw, &c); jerr == nil && c.ID != "" {
			return c, nil
		}
	}

	c, err := r.inner.FindByToken(ctx, token)
	if err != nil {
		// Unknown tokens are NOT negatively cached: a flood of bad tokens
		// would otherwise evict real entries.
		return Client{}, err
	}

	if raw, jerr := json.Marshal(c); jerr == nil {
		if serr := r.rdb.Set(ctx, key, raw, r.ttl).Err(); serr != nil {
			logger.From(ctx).Debug("token cache set failed", "err", serr)
		}
	}
	return c, nil
}
