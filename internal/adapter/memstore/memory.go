package memstore

import (
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
)

// MemoryStore is an in-memory ChunkStore for tests and the wasm preview.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string]domain.Document
	chunks    map[string]domain.Chunk
	vectors   map[string][]float32
	docChunks map[string][]string
	dimension int
}

var _ port.ChunkStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
		vectors:   make(map[string][]float32),
		docChunks: make(map[string][]string),
	}
}

func (s *MemoryStore) PutDoc(doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) GetDoc(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s", port.ErrDocumentNotFound, id)
	}
	return doc, nil
}

func (s *MemoryStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteChunks(id)
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (s *MemoryStore) SaveChunk(chunk domain.Chunk, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vector != nil {
		if s.dimension != 0 && len(vector) != s.dimension {
			return fmt.Errorf("%w: expected %d, got %d", port.ErrDimensionMismatch, s.dimension, len(vector))
		}
		s.dimension = len(vector)
		s.vectors[chunk.ID] = vector
	} else {
		delete(s.vectors, chunk.ID)
	}

	if _, exists := s.chunks[chunk.ID]; !exists {
		s.docChunks[chunk.DocID] = append(s.docChunks[chunk.DocID], chunk.ID)
	}
	s.chunks[chunk.ID] = chunk
	return nil
}

func (s *MemoryStore) GetChunk(id string) (domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return domain.Chunk{}, fmt.Errorf("%w: %s", port.ErrChunkNotFound, id)
	}
	return chunk, nil
}

func (s *MemoryStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.docChunks[docID]
	chunks := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := s.chunks[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

func (s *MemoryStore) DeleteChunksByDoc(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteChunks(docID)
	return nil
}

func (s *MemoryStore) deleteChunks(docID string) {
	for _, id := range s.docChunks[docID] {
		delete(s.chunks, id)
		delete(s.vectors, id)
	}
	delete(s.docChunks, docID)
}

func (s *MemoryStore) SearchVectors(query []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", port.ErrDimensionMismatch, s.dimension, len(query))
	}

	results := make([]domain.ScoredChunk, 0, len(s.vectors))
	for id, vec := range s.vectors {
		results = append(results, domain.ScoredChunk{
			Chunk: s.chunks[id],
			Score: domain.CosineSimilarity(query, vec),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) GetStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.Stats{
		TotalDocs:    len(s.docs),
		TotalChunks:  len(s.chunks),
		TotalVectors: len(s.vectors),
		Dimension:    s.dimension,
	}
	if len(s.chunks) > 0 {
		total := 0
		for _, c := range s.chunks {
			total += utf8.RuneCountInString(c.Text)
		}
		stats.AvgChunkLen = float64(total) / float64(len(s.chunks))
	}
	return stats, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
