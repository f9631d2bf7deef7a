package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"vectorconvert/config"
	"vectorconvert/internal/adapter/chunker"
	"vectorconvert/internal/adapter/fs"
	"vectorconvert/internal/domain"
)

type fileRun struct {
	path    string
	runes   int
	chunks  int
	method  domain.ChunkMethod
	elapsed time.Duration
}

func main() {
	dir := flag.String("dir", "", "Directory of documents to chunk")
	iterations := flag.Int("n", 10, "Chunking passes per file")
	size := flag.Int("size", 0, "Chunk size (default from config)")
	overlap := flag.Int("overlap", -1, "Chunk overlap (default from config)")
	flag.Parse()

	if *dir == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir ./docs [-n 10] [-size 1000] [-overlap 200]")
		fmt.Println("\nReports:")
		fmt.Println("  1. Which chunking tier handled each document")
		fmt.Println("  2. Chunk counts and average chunk length")
		fmt.Println("  3. Chunking throughput")
		os.Exit(1)
	}
	if *iterations < 1 {
		*iterations = 1
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	cc := chunker.Config{
		ChunkSize:          cfg.Chunking.ChunkSize,
		ChunkOverlap:       cfg.Chunking.ChunkOverlap,
		MinSubstantialSize: cfg.Chunking.MinSubstantialSize,
		MinMergeSize:       cfg.Chunking.MinMergeSize,
	}
	if *size > 0 {
		cc.ChunkSize = *size
	}
	if *overlap >= 0 {
		cc.ChunkOverlap = *overlap
	}
	pipeline := chunker.NewPipeline(cc, nil)

	files, err := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes).Walk(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking %s: %v\n", *dir, err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No matching documents found.")
		return
	}

	fmt.Println("CHUNKING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Documents: %d  Passes: %d  Size: %d  Overlap: %d\n\n",
		len(files), *iterations, pipeline.Config().ChunkSize, pipeline.Config().ChunkOverlap)

	var runs []fileRun
	for _, f := range files {
		content, err := fs.ReadFile(f.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", f.Path, err)
			continue
		}
		contentType := domain.ContentTypeForPath(f.Path)

		var (
			chunks []string
			method domain.ChunkMethod
		)
		start := time.Now()
		for i := 0; i < *iterations; i++ {
			chunks, method = pipeline.ChunkDocumentWithMethod(content, contentType)
		}
		runs = append(runs, fileRun{
			path:    f.Path,
			runes:   utf8.RuneCountInString(content),
			chunks:  len(chunks),
			method:  method,
			elapsed: time.Since(start) / time.Duration(*iterations),
		})
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].elapsed > runs[j].elapsed })

	methods := make(map[domain.ChunkMethod]int)
	var totalRunes, totalChunks int
	var totalElapsed time.Duration
	for _, r := range runs {
		methods[r.method]++
		totalRunes += r.runes
		totalChunks += r.chunks
		totalElapsed += r.elapsed
	}

	fmt.Println("Slowest documents:")
	for i, r := range runs {
		if i == 10 {
			break
		}
		fmt.Printf("  %-40s %-9s %4d chunks  %v\n", truncate(r.path, 40), r.method, r.chunks, r.elapsed)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 70))
	fmt.Println("Tiers:")
	for _, m := range []domain.ChunkMethod{domain.MethodSemantic, domain.MethodFallback, domain.MethodFixed, domain.MethodWhole, domain.MethodNone} {
		if methods[m] > 0 {
			fmt.Printf("  %-9s %d\n", m, methods[m])
		}
	}

	fmt.Println()
	fmt.Printf("Total chunks:     %d\n", totalChunks)
	if totalChunks > 0 {
		fmt.Printf("Avg chunk length: %.1f chars\n", float64(totalRunes)/float64(totalChunks))
	}
	fmt.Printf("Time per pass:    %v\n", totalElapsed)
	if totalElapsed > 0 {
		fmt.Printf("Throughput:       %.0f chars/sec\n", float64(totalRunes)/totalElapsed.Seconds())
	}
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return "..." + s[len(s)-width+3:]
}
