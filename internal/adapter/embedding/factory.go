package embedding

import (
	"fmt"

	"vectorconvert/config"
	"vectorconvert/internal/port"
)

// NewFromConfig builds the embedder selected by cfg.Provider.
func NewFromConfig(cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL, cfg.Dimension)
	case "ollama":
		return NewOllamaEmbedder(cfg.Model, cfg.BaseURL, cfg.Dimension)
	case "mock", "":
		return NewMockEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
