package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorconvert/internal/adapter/embedding"
	"vectorconvert/internal/domain"
)

func TestSearch_FindsRelevantChunk(t *testing.T) {
	emb := embedding.NewMockEmbedder(128)
	f := newIngestFixture(t, emb, IngestOptions{UseChunking: true})
	db := writeDoc(t, f.dir, "db.txt", "configure the postgres database connection pool")
	writeDoc(t, f.dir, "bread.txt", "knead the dough and bake the bread")

	_, err := f.uc.Ingest(context.Background(), f.dir, nil)
	require.NoError(t, err)

	uc := NewSearchUseCase(f.store, emb, 0)
	results, err := uc.Search(context.Background(), "database connection", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, db, results[0].Path)
	assert.Equal(t, "db", results[0].Title)
	assert.Greater(t, results[0].Score, results[1].Score)

	filtered := NewSearchUseCase(f.store, emb, 0.3)
	results, err = filtered.Search(context.Background(), "database connection", 2)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_EmptyQuery(t *testing.T) {
	uc := NewSearchUseCase(nil, embedding.NewMockEmbedder(8), 0)
	_, err := uc.Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestDocumentTitle(t *testing.T) {
	assert.Equal(t, "Intro", DocumentTitle("text first\n\n## Intro\n", domain.ContentMarkdown, "/x/readme.md"))
	assert.Equal(t, "Setext", DocumentTitle("Setext\n======\n", domain.ContentMarkdown, "/x/a.md"))
	assert.Equal(t, "notes", DocumentTitle("# Not used for plain", domain.ContentPlain, "/x/notes.txt"))
	assert.Equal(t, "readme", DocumentTitle("no headings", domain.ContentMarkdown, "/x/readme.md"))
}
