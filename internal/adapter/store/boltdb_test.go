package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorconvert/config"
	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
)

func newTestStore(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testChunk(docID string, index int, text string) domain.Chunk {
	return domain.Chunk{
		ID:     domain.ChunkID(docID, index),
		DocID:  docID,
		Index:  index,
		Text:   text,
		Tokens: 3,
		Method: domain.MethodSemantic,
	}
}

func TestBoltStore_DocRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	doc := domain.Document{
		ID:          "doc1",
		Path:        "notes/a.md",
		Title:       "A",
		ContentType: domain.ContentMarkdown,
		ModTime:     time.Unix(1700000000, 0),
		ContentHash: "abc",
		Size:        42,
		ChunkCount:  2,
	}
	require.NoError(t, s.PutDoc(doc))

	got, err := s.GetDoc("doc1")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = s.GetDoc("missing")
	assert.ErrorIs(t, err, port.ErrDocumentNotFound)
}

func TestBoltStore_ChunksOrderedByIndex(t *testing.T) {
	s, _ := newTestStore(t)

	// Saved out of order, as concurrent embedding may do.
	for _, i := range []int{2, 0, 1} {
		require.NoError(t, s.SaveChunk(testChunk("doc1", i, "chunk text"), nil))
	}

	chunks, err := s.GetChunksByDoc("doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, domain.MethodSemantic, c.Method)
	}

	// Re-saving the same chunk does not duplicate it.
	require.NoError(t, s.SaveChunk(testChunk("doc1", 1, "replaced"), nil))
	chunks, err = s.GetChunksByDoc("doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "replaced", chunks[1].Text)

	_, err = s.GetChunk("nope")
	assert.ErrorIs(t, err, port.ErrChunkNotFound)
}

func TestBoltStore_SearchVectors(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.SaveChunk(testChunk("doc1", 0, "x axis"), []float32{1, 0, 0}))
	require.NoError(t, s.SaveChunk(testChunk("doc1", 1, "y axis"), []float32{0, 1, 0}))
	require.NoError(t, s.SaveChunk(testChunk("doc2", 0, "mostly x"), []float32{0.9, 0.1, 0}))

	results, err := s.SearchVectors([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x axis", results[0].Chunk.Text)
	assert.Equal(t, "mostly x", results[1].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	_, err = s.SearchVectors([]float32{1, 0}, 2)
	assert.ErrorIs(t, err, port.ErrDimensionMismatch)

	err = s.SaveChunk(testChunk("doc3", 0, "bad"), []float32{1, 2})
	assert.ErrorIs(t, err, port.ErrDimensionMismatch)
}

func TestBoltStore_VectorsSurviveReopen(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, s.SaveChunk(testChunk("doc1", 0, "persisted"), []float32{0.5, 0.5}))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
	assert.Equal(t, 2, stats.Dimension)

	results, err := reopened.SearchVectors([]float32{0.5, 0.5}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted", results[0].Chunk.Text)
}

func TestBoltStore_DeleteDocCascades(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.PutDoc(domain.Document{ID: "doc1", Path: "a.txt"}))
	require.NoError(t, s.SaveChunk(testChunk("doc1", 0, "one"), []float32{1, 0}))
	require.NoError(t, s.SaveChunk(testChunk("doc1", 1, "two"), []float32{0, 1}))

	require.NoError(t, s.DeleteDoc("doc1"))

	_, err := s.GetDoc("doc1")
	assert.ErrorIs(t, err, port.ErrDocumentNotFound)

	chunks, err := s.GetChunksByDoc("doc1")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)
	assert.Equal(t, 0, stats.TotalVectors)
}

func TestBoltStore_Stats(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.PutDoc(domain.Document{ID: "doc1"}))
	require.NoError(t, s.SaveChunk(testChunk("doc1", 0, "abcd"), []float32{1}))
	require.NoError(t, s.SaveChunk(testChunk("doc1", 1, "ab"), nil))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocs)
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, 1, stats.TotalVectors)
	assert.InDelta(t, 3.0, stats.AvgChunkLen, 1e-9)
}

func TestMigration(t *testing.T) {
	s, _ := newTestStore(t)
	cfg := config.DefaultConfig()

	result, err := s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsMigration)

	require.NoError(t, s.Migrate(cfg))

	rebuild, _, err := s.NeedsRebuild(cfg)
	require.NoError(t, err)
	assert.False(t, rebuild)

	changed := config.DefaultConfig()
	changed.Chunking.ChunkSize = 500
	rebuild, reason, err := s.NeedsRebuild(changed)
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.Equal(t, "index configuration changed", reason)
}

func TestClear(t *testing.T) {
	s, _ := newTestStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, s.Migrate(cfg))

	require.NoError(t, s.PutDoc(domain.Document{ID: "doc1"}))
	require.NoError(t, s.SaveChunk(testChunk("doc1", 0, "text"), []float32{1, 1}))

	require.NoError(t, s.Clear())

	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectors)

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
}

func TestComputeConfigHash(t *testing.T) {
	a := config.DefaultConfig()
	b := config.DefaultConfig()
	assert.Equal(t, ComputeConfigHash(a), ComputeConfigHash(b))

	b.Embedding.Model = "text-embedding-3-small"
	assert.NotEqual(t, ComputeConfigHash(a), ComputeConfigHash(b))
}
