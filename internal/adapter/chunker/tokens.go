package chunker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter reports approximate model token counts for chunk text.
type TokenCounter struct {
	mu    sync.Mutex
	codec tokenizer.Codec
}

// NewTokenCounter loads the cl100k_base encoding.
func NewTokenCounter() (*TokenCounter, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return &TokenCounter{codec: codec}, nil
}

// Count returns the number of tokens in text. A nil counter, or an
// encoding failure, falls back to a word-based estimate.
func (c *TokenCounter) Count(text string) int {
	if c == nil || c.codec == nil {
		return EstimateTokens(text)
	}
	c.mu.Lock()
	ids, _, err := c.codec.Encode(text)
	c.mu.Unlock()
	if err != nil {
		return EstimateTokens(text)
	}
	return len(ids)
}

// EstimateTokens approximates tokens as 1.3 per whitespace-separated word.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return (words*13 + 9) / 10
}
