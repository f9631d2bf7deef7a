package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
)

var (
	bucketDocs      = []byte("docs")
	bucketChunks    = []byte("chunks")
	bucketBlobs     = []byte("blobs")
	bucketDocChunks = []byte("doc_chunks")
	bucketVectors   = []byte("vectors")
	bucketStats     = []byte("stats")
)

var allBuckets = [][]byte{bucketDocs, bucketChunks, bucketBlobs, bucketDocChunks, bucketVectors, bucketStats}

// BoltStore is a bbolt-backed ChunkStore. Vectors are mirrored in memory
// for brute-force search.
type BoltStore struct {
	db *bbolt.DB

	mu        sync.RWMutex
	vectors   map[string][]float32
	dimension int
}

var _ port.ChunkStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db, vectors: make(map[string][]float32)}
	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return s, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

type docMeta struct {
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	ContentType string `json:"content_type"`
	ModTime     int64  `json:"mod_time"`
	ContentHash string `json:"content_hash"`
	Size        int64  `json:"size"`
	ChunkCount  int    `json:"chunk_count"`
}

type chunkMeta struct {
	DocID  string `json:"doc_id"`
	Index  int    `json:"index"`
	Tokens int    `json:"tokens"`
	Method string `json:"method,omitempty"`
}

func (m docMeta) toDocument(id string) domain.Document {
	return domain.Document{
		ID:          id,
		Path:        m.Path,
		Title:       m.Title,
		ContentType: domain.ContentType(m.ContentType),
		ModTime:     time.Unix(m.ModTime, 0),
		ContentHash: m.ContentHash,
		Size:        m.Size,
		ChunkCount:  m.ChunkCount,
	}
}

func (m chunkMeta) toChunk(id string, text []byte) domain.Chunk {
	return domain.Chunk{
		ID:     id,
		DocID:  m.DocID,
		Index:  m.Index,
		Text:   string(text),
		Tokens: m.Tokens,
		Method: domain.ChunkMethod(m.Method),
	}
}

func (s *BoltStore) PutDoc(doc domain.Document) error {
	meta := docMeta{
		Path:        doc.Path,
		Title:       doc.Title,
		ContentType: string(doc.ContentType),
		ModTime:     doc.ModTime.Unix(),
		ContentHash: doc.ContentHash,
		Size:        doc.Size,
		ChunkCount:  doc.ChunkCount,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).Put([]byte(doc.ID), data)
	})
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", port.ErrDocumentNotFound, id)
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		doc = meta.toDocument(id)
		return nil
	})
	return doc, err
}

func (s *BoltStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := s.deleteChunks(tx, id); err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Delete([]byte(id))
	})
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			docs = append(docs, meta.toDocument(string(k)))
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) SaveChunk(chunk domain.Chunk, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vector != nil && s.dimension != 0 && len(vector) != s.dimension {
		return fmt.Errorf("%w: expected %d, got %d", port.ErrDimensionMismatch, s.dimension, len(vector))
	}

	meta, err := json.Marshal(chunkMeta{
		DocID:  chunk.DocID,
		Index:  chunk.Index,
		Tokens: chunk.Tokens,
		Method: string(chunk.Method),
	})
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		id := []byte(chunk.ID)
		if err := tx.Bucket(bucketChunks).Put(id, meta); err != nil {
			return err
		}
		if err := tx.Bucket(bucketBlobs).Put(id, []byte(chunk.Text)); err != nil {
			return err
		}
		if err := appendDocChunk(tx.Bucket(bucketDocChunks), chunk.DocID, chunk.ID); err != nil {
			return err
		}

		vectors := tx.Bucket(bucketVectors)
		if vector == nil {
			return vectors.Delete(id)
		}
		data, err := encodeVector(vector)
		if err != nil {
			return err
		}
		return vectors.Put(id, data)
	})
	if err != nil {
		return fmt.Errorf("save chunk %s: %w", chunk.ID, err)
	}

	if vector == nil {
		delete(s.vectors, chunk.ID)
	} else {
		s.vectors[chunk.ID] = vector
		s.dimension = len(vector)
	}
	return nil
}

func appendDocChunk(b *bbolt.Bucket, docID, chunkID string) error {
	var ids []string
	if existing := b.Get([]byte(docID)); existing != nil {
		if err := json.Unmarshal(existing, &ids); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if id == chunkID {
			return nil
		}
	}
	ids = append(ids, chunkID)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return b.Put([]byte(docID), data)
}

func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", port.ErrChunkNotFound, id)
		}
		var meta chunkMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		chunk = meta.toChunk(id, tx.Bucket(bucketBlobs).Get([]byte(id)))
		return nil
	})
	return chunk, err
}

func (s *BoltStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocChunks).Get([]byte(docID))
		if data == nil {
			return nil
		}
		var chunkIDs []string
		if err := json.Unmarshal(data, &chunkIDs); err != nil {
			return err
		}
		chunkBucket := tx.Bucket(bucketChunks)
		blobBucket := tx.Bucket(bucketBlobs)
		for _, id := range chunkIDs {
			data := chunkBucket.Get([]byte(id))
			if data == nil {
				continue
			}
			var meta chunkMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				continue
			}
			chunks = append(chunks, meta.toChunk(id, blobBucket.Get([]byte(id))))
		}
		return nil
	})
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, err
}

func (s *BoltStore) DeleteChunksByDoc(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		return s.deleteChunks(tx, docID)
	})
}

// deleteChunks removes a document's chunks, blobs and vectors. Callers hold s.mu.
func (s *BoltStore) deleteChunks(tx *bbolt.Tx, docID string) error {
	docChunks := tx.Bucket(bucketDocChunks)
	data := docChunks.Get([]byte(docID))
	if data == nil {
		return nil
	}
	var chunkIDs []string
	if err := json.Unmarshal(data, &chunkIDs); err != nil {
		return err
	}
	chunkBucket := tx.Bucket(bucketChunks)
	blobBucket := tx.Bucket(bucketBlobs)
	vectorBucket := tx.Bucket(bucketVectors)
	for _, id := range chunkIDs {
		key := []byte(id)
		if err := chunkBucket.Delete(key); err != nil {
			return err
		}
		if err := blobBucket.Delete(key); err != nil {
			return err
		}
		if err := vectorBucket.Delete(key); err != nil {
			return err
		}
		delete(s.vectors, id)
	}
	return docChunks.Delete([]byte(docID))
}

// GetStats computes corpus statistics from the stored data.
func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		stats.TotalDocs = tx.Bucket(bucketDocs).Stats().KeyN

		var totalLen int
		err := tx.Bucket(bucketBlobs).ForEach(func(_, v []byte) error {
			stats.TotalChunks++
			totalLen += len([]rune(string(v)))
			return nil
		})
		if err != nil {
			return err
		}
		if stats.TotalChunks > 0 {
			stats.AvgChunkLen = float64(totalLen) / float64(stats.TotalChunks)
		}
		return nil
	})

	s.mu.RLock()
	stats.TotalVectors = len(s.vectors)
	stats.Dimension = s.dimension
	s.mu.RUnlock()

	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
