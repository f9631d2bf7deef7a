package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorconvert/internal/adapter/chunker"
	"vectorconvert/internal/adapter/embedding"
	"vectorconvert/internal/adapter/fs"
	"vectorconvert/internal/adapter/memstore"
	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
)

func numberedGuide(items int) string {
	var b strings.Builder
	b.WriteString("# Setup Guide\n\n")
	for i := 1; i <= items; i++ {
		fmt.Fprintf(&b, "%d. Step %d installs component %d and verifies that it is running correctly.\n", i, i, i)
		fmt.Fprintf(&b, "   Check the logs of component %d for errors before moving on.\n", i)
	}
	return b.String()
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type ingestFixture struct {
	dir   string
	store *memstore.MemoryStore
	uc    *IngestUseCase
}

func newIngestFixture(t *testing.T, emb port.Embedder, opts IngestOptions) *ingestFixture {
	t.Helper()
	dir := t.TempDir()
	store := memstore.NewMemoryStore()

	var batch *BatchEmbedder
	if emb != nil {
		batch = NewBatchEmbedder(emb, 2, nil)
		batch.reclaim = func() {}
	}

	uc := NewIngestUseCase(
		store,
		fs.NewWalker([]string{"**/*.md", "**/*.txt"}, nil),
		fs.Reader{},
		chunker.NewPipeline(chunker.DefaultConfig(), nil),
		nil,
		batch,
		opts,
		nil,
	)
	return &ingestFixture{dir: dir, store: store, uc: uc}
}

func TestIngest_ChunksEmbedsAndStores(t *testing.T) {
	f := newIngestFixture(t, embedding.NewMockEmbedder(32), IngestOptions{Workers: 2, UseChunking: true})
	guide := writeDoc(t, f.dir, "guide.md", numberedGuide(12))
	writeDoc(t, f.dir, "note.txt", "A short note.")

	res, err := f.uc.Ingest(context.Background(), f.dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesIngested)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Methods[domain.MethodWhole])
	assert.Equal(t, 1, res.Methods[domain.MethodSemantic])
	assert.Equal(t, res.ChunksCreated, res.EmbeddingsGenerated)

	docs, err := f.store.ListDocs()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	var guideDoc domain.Document
	for _, d := range docs {
		if d.Path == guide {
			guideDoc = d
		}
	}
	assert.Equal(t, "Setup Guide", guideDoc.Title)
	assert.Equal(t, domain.ContentMarkdown, guideDoc.ContentType)

	chunks, err := f.store.GetChunksByDoc(guideDoc.ID)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, guideDoc.ChunkCount, len(chunks))
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, domain.MethodSemantic, c.Method)
		assert.Positive(t, c.Tokens)
		assert.LessOrEqual(t, len([]rune(c.Text)), 1000)
	}

	stats, err := f.store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 32, stats.Dimension)
	assert.Equal(t, stats.TotalChunks, stats.TotalVectors)
}

func TestIngest_Incremental(t *testing.T) {
	f := newIngestFixture(t, embedding.NewMockEmbedder(16), IngestOptions{UseChunking: true})
	keep := writeDoc(t, f.dir, "keep.md", "# Keep\n\nstable content")
	gone := writeDoc(t, f.dir, "gone.txt", "soon deleted")
	edit := writeDoc(t, f.dir, "edit.txt", "first version")

	ctx := context.Background()
	res, err := f.uc.Ingest(ctx, f.dir, nil)
	require.NoError(t, err)
	require.Equal(t, 3, res.FilesIngested)

	// Unchanged content with a newer mtime is skipped too.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(keep, future, future))
	require.NoError(t, os.Remove(gone))
	require.NoError(t, os.WriteFile(edit, []byte("second version"), 0644))
	require.NoError(t, os.Chtimes(edit, future, future))

	res, err = f.uc.Ingest(ctx, f.dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesIngested)
	assert.Equal(t, 1, res.FilesSkipped)
	assert.Equal(t, 1, res.FilesDeleted)

	docs, err := f.store.ListDocs()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	chunks, err := f.store.GetChunksByDoc(generateDocID(edit))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "second version", chunks[0].Text)

	res, err = f.uc.Ingest(ctx, f.dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesSkipped)
	assert.Equal(t, 0, res.FilesIngested)
}

func TestIngest_FailedChunkLeavesGap(t *testing.T) {
	f := newIngestFixture(t, &flakyEmbedder{}, IngestOptions{UseChunking: true})

	var b strings.Builder
	for i := 1; i <= 3; i++ {
		marker := "good"
		if i == 2 {
			marker = "bad"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i, marker, strings.Repeat("x", 400))
	}
	path := writeDoc(t, f.dir, "list.txt", b.String())

	res, err := f.uc.Ingest(context.Background(), f.dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesIngested)
	assert.Equal(t, 1, res.EmbeddingsFailed)
	assert.Equal(t, 2, res.ChunksCreated)

	chunks, err := f.store.GetChunksByDoc(generateDocID(path))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 2, chunks[1].Index)
}

func TestIngest_NothingEmbeddedFails(t *testing.T) {
	f := newIngestFixture(t, &flakyEmbedder{}, IngestOptions{UseChunking: true})
	writeDoc(t, f.dir, "bad.txt", "bad content only")
	writeDoc(t, f.dir, "empty.txt", "   \n")

	res, err := f.uc.Ingest(context.Background(), f.dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesFailed)
	assert.Len(t, res.Errors, 2)

	docs, err := f.store.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngest_WithoutChunking(t *testing.T) {
	f := newIngestFixture(t, nil, IngestOptions{UseChunking: false})
	path := writeDoc(t, f.dir, "guide.md", numberedGuide(12))

	var progressed []string
	res, err := f.uc.Ingest(context.Background(), f.dir, func(p string) { progressed = append(progressed, p) })
	require.NoError(t, err)
	assert.Equal(t, 1, res.Methods[domain.MethodWhole])
	assert.Equal(t, 0, res.EmbeddingsGenerated)
	assert.Equal(t, []string{path}, progressed)

	chunks, err := f.store.GetChunksByDoc(generateDocID(path))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(numberedGuide(12)), chunks[0].Text)

	stats, err := f.store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectors)
}

func TestIngest_Canceled(t *testing.T) {
	f := newIngestFixture(t, embedding.NewMockEmbedder(8), IngestOptions{UseChunking: true})
	writeDoc(t, f.dir, "a.txt", "text")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Ingest(ctx, f.dir, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
