// internal/corpus/cache.go
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps another provider with a Redis read-through cache.
// Cache failures degrade to a direct fetch, never to an error.
type CachedProvider struct {
	inner  Provider
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "corpus-cache"}),
	}
}

func (p *CachedProvider) FetchCorpus(ctx context.Context, opts FetchOptions) ([]models.CorpusEntry, error) {
	key := cacheKey(opts)

	if val, err := p.redis.Get(ctx, key).Result(); err == nil {
		var entries []models.CorpusEntry
		if err := json.Unmarshal([]byte(val), &entries); err == nil {
			return entries, nil
		}
		// Corrupt cache entry: drop it and fall through to the source.
		p.redis.Del(ctx, key)
	}

	entries, err := p.inner.FetchCorpus(ctx, opts)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := p.redis.Set(ctx, key, data, p.ttl).Err(); err != nil {
			p.logger.Warn("corpus cache write failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
	}

	return entries, nil
}

func cacheKey(opts FetchOptions) string {
	return fmt.Sprintf("corpus:list:%s:%d:%t", opts.Category, opts.Limit, opts.Exhaustive)
}
