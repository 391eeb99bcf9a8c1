package search

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

type fakeKnowledge struct {
	snippets []entities.KnowledgeSnippet
	calls    int
}

func (f *fakeKnowledge) Query(ctx context.Context, text string, topK int) ([]entities.KnowledgeSnippet, error) {
	f.calls++
	return f.snippets, nil
}

type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := c.data[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	return val, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func TestCachedKnowledgeAdapterServesFromCache(t *testing.T) {
	provider := &fakeKnowledge{snippets: []entities.KnowledgeSnippet{
		{Content: "CPT 99213 office visit", Category: entities.SnippetCategoryProcedureCode},
	}}
	cache := newMemoryCache()
	adapter := NewCachedKnowledgeAdapter(provider, cache, 60, nil)

	first, err := adapter.Query(context.Background(), "office visit", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 || first[0].Content != "CPT 99213 office visit" {
		t.Fatalf("unexpected snippets: %+v", first)
	}

	// The cache write is async; wait for the key to land.
	key := snippetCacheKey("office visit", 3)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := cache.data[key]; ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache was never populated")
		}
		time.Sleep(10 * time.Millisecond)
	}

	second, err := adapter.Query(context.Background(), "office visit", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("unexpected snippets: %+v", second)
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.calls)
	}
}

func TestCachedKnowledgeAdapterIgnoresCorruptEntries(t *testing.T) {
	provider := &fakeKnowledge{snippets: []entities.KnowledgeSnippet{
		{Content: "Modifier 25 guidance", Category: entities.SnippetCategoryPayerRule},
	}}
	cache := newMemoryCache()
	cache.data[snippetCacheKey("modifier", 3)] = []byte("{not json")

	adapter := NewCachedKnowledgeAdapter(provider, cache, 60, nil)

	snippets, err := adapter.Query(context.Background(), "modifier", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 1 || snippets[0].Category != entities.SnippetCategoryPayerRule {
		t.Fatalf("unexpected snippets: %+v", snippets)
	}
	if provider.calls != 1 {
		t.Errorf("expected fallthrough to provider, got %d calls", provider.calls)
	}
}

func TestCachedKnowledgeAdapterDisabledWithoutTTL(t *testing.T) {
	provider := &fakeKnowledge{}
	adapter := NewCachedKnowledgeAdapter(provider, newMemoryCache(), 0, nil)
	if adapter != provider {
		t.Fatal("expected caching to be bypassed when TTL is zero")
	}
}

func TestSnippetCacheKeyIsStable(t *testing.T) {
	a := snippetCacheKey("CPT codes for follow-up hypertension", 3)
	b := snippetCacheKey("CPT codes for follow-up hypertension", 3)
	if a != b {
		t.Fatalf("expected stable keys, got %s and %s", a, b)
	}
	if c := snippetCacheKey("CPT codes for follow-up hypertension", 5); c == a {
		t.Fatal("expected topK to distinguish keys")
	}

	// Round-trip what the adapter stores to make sure categories survive.
	snippets := []entities.KnowledgeSnippet{{Content: "x", Category: entities.SnippetCategoryDiagnosisCode}}
	data, err := json.Marshal(snippets)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out []entities.KnowledgeSnippet
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out[0].Category != entities.SnippetCategoryDiagnosisCode {
		t.Fatalf("unexpected category: %s", out[0].Category)
	}
}
