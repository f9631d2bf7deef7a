package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectorconvert/internal/domain"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestChunkCommand_StdinJSON(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "  hello world  ", "chunk", "-", "--type", "markdown", "--json", "-d", dir)

	var report chunkReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.MethodWhole, report.Method)
	require.Len(t, report.Chunks, 1)
	assert.Equal(t, "hello world", report.Chunks[0].Text)
	assert.Equal(t, 11, report.Chunks[0].Chars)
}

func TestIngestListAndSearch(t *testing.T) {
	dir := t.TempDir()
	guide := "# Installing\n\nDownload the archive and unpack it into the tools directory.\n"
	notes := "Rollback procedure: stop the service, restore the snapshot, start the service again.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte(guide), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(notes), 0o644))

	run(t, "", "ingest", "-d", dir)

	var docs []domain.Document
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "docs", "list", "--json", "-d", dir)), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "Installing", docs[0].Title)
	assert.Equal(t, 1, docs[0].ChunkCount)

	var results []searchOutput
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "search", "-q", "restore the snapshot", "-k", "1", "--json", "-d", dir)), &results))
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), results[0].Path)
}
