package chunker

import (
	"errors"
	"fmt"
)

const (
	DefaultChunkSize          = 1000
	DefaultChunkOverlap       = 200
	DefaultMinSubstantialSize = 100
	DefaultMinMergeSize       = 50
)

var (
	// ErrInvalidChunkSize indicates chunk size is invalid (<=0)
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidOverlap indicates overlap is negative or not below the chunk size
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and less than chunk size")
)

// Config controls chunking behavior. All sizes are in characters (runes).
type Config struct {
	ChunkSize    int // Target maximum chunk length.
	ChunkOverlap int // Overlap between adjacent fallback chunks.

	// MinSubstantialSize is the pending-text length at which a section
	// boundary flushes it as its own chunk. Shorter text is carried into
	// the section that follows.
	MinSubstantialSize int

	// MinMergeSize is the trimmed length below which a finished chunk is
	// appended to its predecessor.
	MinMergeSize int
}

// DefaultConfig returns the defaults used by the document service.
func DefaultConfig() Config {
	return Config{
		ChunkSize:          DefaultChunkSize,
		ChunkOverlap:       DefaultChunkOverlap,
		MinSubstantialSize: DefaultMinSubstantialSize,
		MinMergeSize:       DefaultMinMergeSize,
	}
}

// Validate reports whether the size parameters satisfy the chunker's
// preconditions. The pipeline itself never rejects a config; it normalizes it.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap=%d size=%d", ErrInvalidOverlap, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// normalized replaces unusable values so chunking can always proceed.
func (c Config) normalized() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize - 1
	}
	if c.MinSubstantialSize <= 0 {
		c.MinSubstantialSize = DefaultMinSubstantialSize
	}
	if c.MinMergeSize <= 0 {
		c.MinMergeSize = DefaultMinMergeSize
	}
	return c
}
