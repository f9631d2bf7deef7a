package cli

import (
	"fmt"
	"os"

	"vectorconvert/config"
	"vectorconvert/internal/adapter/cache"
	"vectorconvert/internal/adapter/chunker"
	"vectorconvert/internal/adapter/embedding"
	"vectorconvert/internal/adapter/store"
	"vectorconvert/internal/port"
)

func chunkerConfig(c config.ChunkingConfig) chunker.Config {
	return chunker.Config{
		ChunkSize:          c.ChunkSize,
		ChunkOverlap:       c.ChunkOverlap,
		MinSubstantialSize: c.MinSubstantialSize,
		MinMergeSize:       c.MinMergeSize,
	}
}

// newEmbedder builds the configured embedder, wrapped in an LRU cache
// unless cache_size is zero.
func newEmbedder(ec config.EmbeddingConfig) (port.Embedder, error) {
	emb, err := embedding.NewFromConfig(ec)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if ec.CacheSize <= 0 {
		return emb, nil
	}
	cached, err := cache.NewEmbeddingCache(emb, ec.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return cached, nil
}

// openExistingStore opens the index under dir, failing if none exists yet.
func openExistingStore(dir string) (*store.BoltStore, error) {
	dbPath := config.IndexDBPath(dir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no index found. Run 'vectorconvert ingest' first")
	}
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return st, nil
}
