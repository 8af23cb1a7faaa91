package embedding

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-itinerary-planner/app/observability/metrics"
)

var _ Provider = (*CachedProvider)(nil)

// CachedProvider memoizes embeddings by their exact input text.
type CachedProvider struct {
	next   Provider
	cache  *cache.Cache
	logger *slog.Logger
}

func NewCachedProvider(next Provider, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		next:   next,
		cache:  cache.New(ttl, 1*time.Hour),
		logger: logger,
	}
}

func (c *CachedProvider) Dimensions() int { return c.next.Dimensions() }

func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, found := c.cache.Get(text); found {
		if v, ok := cached.([]float32); ok {
			metrics.Get().EmbeddingCacheHitsTotal.Add(ctx, 1)
			c.logger.DebugContext(ctx, "Embedding cache hit", slog.Int("text.length", len(text)))
			return v, nil
		}
	}

	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, v, cache.DefaultExpiration)
	return v, nil
}
