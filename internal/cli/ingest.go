package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vectorconvert/config"
	"vectorconvert/internal/adapter/chunker"
	"vectorconvert/internal/adapter/fs"
	"vectorconvert/internal/adapter/store"
	"vectorconvert/internal/domain"
	"vectorconvert/internal/usecase"
)

var (
	ingestForce      bool
	ingestNoChunking bool
	ingestWorkers    int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Chunk, embed and store documents",
	Long: `Ingest markdown and text files in the specified directory.
Each document is chunked, its chunks embedded in small batches, and the
result stored in .vectorconvert/index.db within the target directory.
Unchanged files are skipped; removed files are dropped from the index.

Examples:
  vectorconvert ingest .                  # Ingest current directory
  vectorconvert ingest ./docs --force     # Rebuild the index from scratch
  vectorconvert ingest . --no-chunking    # Store each document as one chunk`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "clear the index before ingesting")
	ingestCmd.Flags().BoolVar(&ingestNoChunking, "no-chunking", false, "store each document as a single chunk")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "concurrent documents (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	if ingestNoChunking {
		cfg.Ingest.UseChunking = false
	}
	if ingestWorkers > 0 {
		cfg.Ingest.Workers = ingestWorkers
	}

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", config.DataDirName, err)
	}

	dbPath := config.IndexDBPath(path)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	migrationResult, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}

	switch {
	case ingestForce:
		fmt.Println("Clearing existing index...")
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	case migrationResult.NeedsRebuild:
		fmt.Printf("Index rebuild required: %s\n", migrationResult.Reason)
		fmt.Println("Clearing existing index...")
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	case migrationResult.NeedsMigration:
		logger.Info("running schema migration", "reason", migrationResult.Reason)
	}
	if err := st.Migrate(cfg); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	var batch *usecase.BatchEmbedder
	if cfg.Embedding.Enabled {
		emb, err := newEmbedder(cfg.Embedding)
		if err != nil {
			return err
		}
		batch = usecase.NewBatchEmbedder(emb, cfg.Embedding.BatchSize, logger)
		fmt.Printf("Embedding with %s (%s, dim %d)\n", cfg.Embedding.Provider, emb.ModelName(), emb.Dimension())
	}

	tokens, err := chunker.NewTokenCounter()
	if err != nil {
		logger.Warn("token counter unavailable, estimating token counts", "error", err)
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	ingestUC := usecase.NewIngestUseCase(
		st,
		walker,
		fs.Reader{},
		chunker.NewPipeline(chunkerConfig(cfg.Chunking), logger),
		tokens,
		batch,
		usecase.IngestOptions{Workers: cfg.Ingest.Workers, UseChunking: cfg.Ingest.UseChunking},
		logger,
	)

	fmt.Printf("Scanning %s...\n", path)
	files, err := walker.Walk(path)
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	progress := func(string) {
		bar.Add(1)
	}

	result, err := ingestUC.Ingest(cmd.Context(), path, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	bar.Finish()

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files ingested: %d\n", result.FilesIngested)
	fmt.Printf("  Files skipped:  %d (unchanged)\n", result.FilesSkipped)
	fmt.Printf("  Files deleted:  %d (removed)\n", result.FilesDeleted)
	if result.FilesFailed > 0 {
		fmt.Printf("  Files failed:   %d\n", result.FilesFailed)
	}
	fmt.Printf("  Chunks created: %d\n", result.ChunksCreated)
	if cfg.Embedding.Enabled {
		fmt.Printf("  Embeddings:     %d (%d failed)\n", result.EmbeddingsGenerated, result.EmbeddingsFailed)
	}
	printMethods(result.Methods)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\nIndex stored at: %s\n", dbPath)
	return nil
}

func printMethods(methods map[domain.ChunkMethod]int) {
	if len(methods) == 0 {
		return
	}
	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, string(m))
	}
	sort.Strings(names)
	fmt.Printf("  Chunking tiers:")
	for _, name := range names {
		fmt.Printf(" %s=%d", name, methods[domain.ChunkMethod(name)])
	}
	fmt.Println()
}
