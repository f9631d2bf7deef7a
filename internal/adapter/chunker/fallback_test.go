package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorconvert/internal/domain"
)

func proseDocument(minLen int) string {
	var sentences []string
	total := 0
	for i := 1; total < minLen; i++ {
		s := fmt.Sprintf("Sentence number %d describes item %d", i, i)
		sentences = append(sentences, s)
		total += len(s) + 2
	}
	return strings.Join(sentences, ". ") + "."
}

func TestFallbackSplitter_PlainOverlap(t *testing.T) {
	f := NewFallbackSplitter(1000, 200)

	chunks, err := f.Split(proseDocument(1500), domain.ContentPlain)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, runeLen(c), 1000)
	}

	lead := strings.SplitN(chunks[1], ". ", 2)[0]
	assert.Contains(t, chunks[0], lead, "second chunk should begin inside the first")
}

func TestFallbackSplitter_MarkdownHeadings(t *testing.T) {
	para := strings.Repeat("p", 80)
	content := "# Alpha\n" + para + "\n\n```\n# not a heading\n```\n\n# Beta\n" + para

	f := NewFallbackSplitter(120, 0)
	chunks, err := f.Split(content, domain.ContentMarkdown)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0], "# Alpha"))
	assert.Contains(t, chunks[0], "# not a heading")
	assert.Equal(t, "# Beta\n"+para, chunks[1])
}

func TestFallbackSplitter_MarkdownPacksSmallSections(t *testing.T) {
	f := NewFallbackSplitter(1000, 0)

	chunks, err := f.Split("# A\none\n\n# B\ntwo", domain.ContentMarkdown)
	require.NoError(t, err)
	assert.Equal(t, []string{"# A\none\n\n# B\ntwo"}, chunks)
}

func TestFallbackSplitter_MarkdownOversizedSection(t *testing.T) {
	content := "# Long\n\n" + proseDocument(600)

	f := NewFallbackSplitter(200, 20)
	chunks, err := f.Split(content, domain.ContentMarkdown)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, runeLen(c), 200)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestFallbackSplitter_SeparatorOverlapStaysInBound(t *testing.T) {
	content := strings.Repeat("a", 60) + ", " + strings.Repeat("b", 39) + ", " + strings.Repeat("c", 60)

	f := NewFallbackSplitter(100, 40)
	chunks, err := f.Split(content, domain.ContentPlain)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, runeLen(c), 100, "chunk %q", c)
	}
}

func TestFallbackSplitter_BoundedRecutsLongPieces(t *testing.T) {
	f := NewFallbackSplitter(100, 0)

	got := f.bounded([]string{"short", strings.Repeat("x", 101) + " " + strings.Repeat("y", 148)})
	require.Len(t, got, 4)
	assert.Equal(t, "short", got[0])
	for _, c := range got[1:] {
		assert.LessOrEqual(t, runeLen(c), 100)
	}
	assert.Equal(t, strings.Repeat("x", 101)+" "+strings.Repeat("y", 148), strings.Join(got[1:], ""))
}
