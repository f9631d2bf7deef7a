package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vectorconvert/internal/usecase"
)

var (
	searchText     string
	searchTopK     int
	searchJSON     bool
	searchMinScore float64
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Semantic search over ingested chunks",
	Long: `Embed the query with the configured provider and return the stored
chunks with the highest cosine similarity.

Examples:
  vectorconvert search -q "how to install"
  vectorconvert search -q "rollback procedure" -k 10 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", usecase.DefaultTopK, "number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop results scoring below this value")
	searchCmd.MarkFlagRequired("query")
}

type searchOutput struct {
	Path       string  `json:"path"`
	Title      string  `json:"title,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if !cfg.Embedding.Enabled {
		return fmt.Errorf("search requires embedding.enabled in the config")
	}

	st, err := openExistingStore(GetRootDir())
	if err != nil {
		return err
	}
	defer st.Close()

	emb, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	results, err := usecase.NewSearchUseCase(st, emb, searchMinScore).Search(cmd.Context(), searchText, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	output := make([]searchOutput, len(results))
	for i, r := range results {
		output[i] = searchOutput{
			Path:       r.Path,
			Title:      r.Title,
			ChunkIndex: r.Chunk.Index,
			Score:      r.Score,
			Text:       r.Chunk.Text,
		}
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	if len(output) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(output), searchText)
	for i, r := range output {
		fmt.Fprintf(out, "--- [%d] %s #%d (score: %.3f) ---\n", i+1, r.Path, r.ChunkIndex, r.Score)
		text := []rune(r.Text)
		if len(text) > 500 {
			text = append(text[:500], []rune("...")...)
		}
		fmt.Fprintln(out, string(text))
		fmt.Fprintln(out)
	}
	return nil
}
