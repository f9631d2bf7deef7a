package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
)

type storedVector struct {
	Vector []float32 `json:"v"`
}

func encodeVector(v []float32) ([]byte, error) {
	return json.Marshal(storedVector{Vector: v})
}

// loadVectors loads all vectors from BoltDB into memory.
func (s *BoltStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			s.vectors[string(k)] = stored.Vector
			if s.dimension == 0 {
				s.dimension = len(stored.Vector)
			}
			return nil
		})
	})
}

// SearchVectors scores every stored vector against query (brute force).
func (s *BoltStore) SearchVectors(query []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", port.ErrDimensionMismatch, s.dimension, len(query))
	}

	type scored struct {
		id    string
		score float64
	}
	scores := make([]scored, 0, len(s.vectors))
	for id, vec := range s.vectors {
		scores = append(scores, scored{id: id, score: domain.CosineSimilarity(query, vec)})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})
	if k > len(scores) {
		k = len(scores)
	}

	results := make([]domain.ScoredChunk, 0, k)
	err := s.db.View(func(tx *bbolt.Tx) error {
		chunkBucket := tx.Bucket(bucketChunks)
		blobBucket := tx.Bucket(bucketBlobs)
		for _, sc := range scores[:k] {
			data := chunkBucket.Get([]byte(sc.id))
			if data == nil {
				continue
			}
			var meta chunkMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				continue
			}
			results = append(results, domain.ScoredChunk{
				Chunk: meta.toChunk(sc.id, blobBucket.Get([]byte(sc.id))),
				Score: sc.score,
			})
		}
		return nil
	})
	return results, err
}
