package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
)

const DefaultTopK = 5

var ErrEmptyQuery = errors.New("query must not be empty")

// SearchUseCase answers semantic queries over stored chunk vectors.
type SearchUseCase struct {
	store             port.ChunkStore
	embedder          port.Embedder
	minScoreThreshold float64 // Filter results below this score (0 = disabled)
}

func NewSearchUseCase(store port.ChunkStore, embedder port.Embedder, minScoreThreshold float64) *SearchUseCase {
	return &SearchUseCase{
		store:             store,
		embedder:          embedder,
		minScoreThreshold: minScoreThreshold,
	}
}

// SearchResult is a matching chunk with its document context.
type SearchResult struct {
	Chunk domain.Chunk
	Score float64
	Path  string
	Title string
}

// Search embeds query and returns the k closest chunks.
func (u *SearchUseCase) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vecs, err := u.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 || vecs[0] == nil {
		return nil, fmt.Errorf("embed query: %w", errEmptyEmbedding)
	}

	scored, err := u.store.SearchVectors(vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}

	docs := make(map[string]domain.Document)
	results := make([]SearchResult, 0, len(scored))
	for _, sc := range scored {
		if u.minScoreThreshold > 0 && sc.Score < u.minScoreThreshold {
			continue
		}
		doc, ok := docs[sc.Chunk.DocID]
		if !ok {
			doc, err = u.store.GetDoc(sc.Chunk.DocID)
			if err != nil && !errors.Is(err, port.ErrDocumentNotFound) {
				return nil, err
			}
			docs[sc.Chunk.DocID] = doc
		}
		results = append(results, SearchResult{
			Chunk: sc.Chunk,
			Score: sc.Score,
			Path:  doc.Path,
			Title: doc.Title,
		})
	}
	return results, nil
}
