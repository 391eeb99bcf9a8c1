package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
)

// CachedKnowledgeAdapter wraps a KnowledgeProvider with a read-through
// cache. Index content changes rarely, so stale reads within the TTL
// are acceptable.
type CachedKnowledgeAdapter struct {
	provider   providers.KnowledgeProvider
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

// NewCachedKnowledgeAdapter creates a new cached knowledge adapter.
// A non-positive ttlSeconds disables caching entirely.
func NewCachedKnowledgeAdapter(provider providers.KnowledgeProvider, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) providers.KnowledgeProvider {
	if ttlSeconds <= 0 || cache == nil {
		return provider
	}
	return &CachedKnowledgeAdapter{
		provider:   provider,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

func snippetCacheKey(text string, topK int) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("knowledge:query:%s:%d", hex.EncodeToString(sum[:]), topK)
}

// Query retrieves snippets with caching
func (a *CachedKnowledgeAdapter) Query(ctx context.Context, text string, topK int) ([]entities.KnowledgeSnippet, error) {
	cacheKey := snippetCacheKey(text, topK)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var snippets []entities.KnowledgeSnippet
		if err := json.Unmarshal(cached, &snippets); err == nil {
			a.recordHit(ctx, true)
			return snippets, nil
		}
		log.Printf("Failed to unmarshal cached snippets for key %s: %v", cacheKey, err)
	}
	a.recordHit(ctx, false)

	snippets, err := a.provider.Query(ctx, text, topK)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(snippets); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, a.ttlSeconds); err != nil {
				log.Printf("Failed to cache snippets for key %s: %v", cacheKey, err)
			}
		}
	}()

	return snippets, nil
}

func (a *CachedKnowledgeAdapter) recordHit(ctx context.Context, hit bool) {
	if a.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("cache", "knowledge"))
	if hit {
		a.metrics.CacheHitCount.Add(ctx, 1, attrs)
	} else {
		a.metrics.CacheMissCount.Add(ctx, 1, attrs)
	}
}
