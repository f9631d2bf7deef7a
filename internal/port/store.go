package port

import (
	"errors"

	"vectorconvert/internal/domain"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrChunkNotFound     = errors.New("chunk not found")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// ChunkStore persists documents, their chunks and the chunk vectors.
type ChunkStore interface {
	PutDoc(doc domain.Document) error

	GetDoc(id string) (domain.Document, error)

	// DeleteDoc removes the document together with its chunks and vectors.
	DeleteDoc(id string) error

	ListDocs() ([]domain.Document, error)

	// SaveChunk stores one chunk and its vector. A nil vector stores the
	// chunk text only. Saving an existing chunk ID replaces it.
	SaveChunk(chunk domain.Chunk, vector []float32) error

	GetChunk(id string) (domain.Chunk, error)

	// GetChunksByDoc returns the document's chunks ordered by Index.
	GetChunksByDoc(docID string) ([]domain.Chunk, error)

	DeleteChunksByDoc(docID string) error

	// SearchVectors returns the k stored chunks closest to query by cosine similarity.
	SearchVectors(query []float32, k int) ([]domain.ScoredChunk, error)

	GetStats() (domain.Stats, error)

	Close() error
}
