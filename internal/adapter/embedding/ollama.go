package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	ollama "github.com/ollama/ollama/api"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaEmbedder embeds text with a local Ollama server.
type OllamaEmbedder struct {
	client    *ollama.Client
	model     string
	dimension int
}

// NewOllamaEmbedder connects to baseURL, or OLLAMA_HOST, or the local default.
func NewOllamaEmbedder(model, baseURL string, dimension int) (*OllamaEmbedder, error) {
	host := baseURL
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultOllamaHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
	}

	if model == "" {
		model = "nomic-embed-text"
	}
	if dimension <= 0 {
		dimension = ollamaDimension(model)
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}
	return &OllamaEmbedder{
		client:    ollama.NewClient(u, httpClient),
		model:     model,
		dimension: dimension,
	}, nil
}

func ollamaDimension(model string) int {
	switch model {
	case "mxbai-embed-large":
		return 1024
	case "all-minilm":
		return 384
	default:
		return 768
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	res, err := e.client.Embed(ctx, &ollama.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", embeddingCount(res), len(texts))
	}
	return res.Embeddings, nil
}

func embeddingCount(res *ollama.EmbedResponse) int {
	if res == nil {
		return 0
	}
	return len(res.Embeddings)
}

func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

func (e *OllamaEmbedder) ModelName() string {
	return e.model
}
