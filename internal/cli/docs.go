package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"vectorconvert/internal/domain"
)

var docsJSON bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect and manage ingested documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show <path|id>",
	Short: "Show the stored chunks of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <path|id>",
	Short: "Remove a document and its chunks from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(docsCmd, statsCmd)
	docsCmd.AddCommand(docsListCmd, docsShowCmd, docsDeleteCmd)
	docsCmd.PersistentFlags().BoolVar(&docsJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")
}

func runDocsList(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore(GetRootDir())
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.ListDocs()
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	out := cmd.OutOrStdout()
	if docsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents ingested.")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(out, "%s  %-8s %4d chunks  %s\n", d.ID, d.ContentType, d.ChunkCount, relPath(d.Path))
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore(GetRootDir())
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := findDoc(st.ListDocs, args[0])
	if err != nil {
		return err
	}
	chunks, err := st.GetChunksByDoc(doc.ID)
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}

	out := cmd.OutOrStdout()
	if docsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Document domain.Document `json:"document"`
			Chunks   []domain.Chunk  `json:"chunks"`
		}{doc, chunks})
	}

	fmt.Fprintf(out, "%s (%s)\n", doc.Title, relPath(doc.Path))
	fmt.Fprintf(out, "type: %s  chunks: %d  ingested mtime: %s\n\n", doc.ContentType, len(chunks), doc.ModTime.Format("2006-01-02 15:04:05"))
	for _, c := range chunks {
		fmt.Fprintf(out, "--- [%d] %s, %d tokens ---\n", c.Index, c.Method, c.Tokens)
		fmt.Fprintln(out, c.Text)
		fmt.Fprintln(out)
	}
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore(GetRootDir())
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := findDoc(st.ListDocs, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteDoc(doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", relPath(doc.Path))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openExistingStore(GetRootDir())
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.GetStats()
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if docsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Fprintf(out, "Documents:      %d\n", stats.TotalDocs)
	fmt.Fprintf(out, "Chunks:         %d\n", stats.TotalChunks)
	fmt.Fprintf(out, "Vectors:        %d (dim %d)\n", stats.TotalVectors, stats.Dimension)
	fmt.Fprintf(out, "Avg chunk len:  %.1f chars\n", stats.AvgChunkLen)
	return nil
}

// findDoc resolves a document by ID or by path (absolute or relative to the root dir).
func findDoc(list func() ([]domain.Document, error), ref string) (domain.Document, error) {
	docs, err := list()
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to list documents: %w", err)
	}
	abs := ref
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(GetRootDir(), ref)
	}
	for _, d := range docs {
		if d.ID == ref || d.Path == abs {
			return d, nil
		}
	}
	return domain.Document{}, fmt.Errorf("document not found: %s", ref)
}

func relPath(path string) string {
	if rel, err := filepath.Rel(GetRootDir(), path); err == nil {
		return rel
	}
	return path
}
