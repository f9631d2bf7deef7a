package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"vectorconvert/internal/port"
)

// EmbeddingCache is an Embedder decorator that remembers vectors for
// previously embedded texts. Re-ingesting unchanged chunks then costs no
// provider calls.
type EmbeddingCache struct {
	embedder port.Embedder
	entries  *lru.Cache[string, []float32]

	hits   atomic.Int64
	misses atomic.Int64
}

var _ port.Embedder = (*EmbeddingCache)(nil)

func NewEmbeddingCache(embedder port.Embedder, maxSize int) (*EmbeddingCache, error) {
	if maxSize <= 0 {
		maxSize = 1024
	}
	entries, err := lru.New[string, []float32](maxSize)
	if err != nil {
		return nil, err
	}
	return &EmbeddingCache{embedder: embedder, entries: entries}, nil
}

func (c *EmbeddingCache) cacheKey(text string) string {
	data := append([]byte(c.embedder.ModelName()), 0)
	data = append(data, text...)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// Embed serves cached vectors and forwards only the misses, in one call.
func (c *EmbeddingCache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		keys[i] = c.cacheKey(text)
		if vec, ok := c.entries.Get(keys[i]); ok {
			results[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	c.hits.Add(int64(len(texts) - len(missTexts)))
	c.misses.Add(int64(len(missTexts)))

	if len(missTexts) == 0 {
		return results, nil
	}

	vecs, err := c.embedder.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		results[i] = vecs[j]
		if vecs[j] != nil {
			c.entries.Add(keys[i], vecs[j])
		}
	}
	return results, nil
}

func (c *EmbeddingCache) Dimension() int {
	return c.embedder.Dimension()
}

func (c *EmbeddingCache) ModelName() string {
	return c.embedder.ModelName()
}

// Stats returns cache hits and misses since creation.
func (c *EmbeddingCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *EmbeddingCache) Size() int {
	return c.entries.Len()
}

// Invalidate drops every cached vector.
func (c *EmbeddingCache) Invalidate() {
	c.entries.Purge()
}
