package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vectorconvert/internal/adapter/chunker"
	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
)

var (
	errEmptyEmbedding = errors.New("embedder returned no vector")
	errEmptyDocument  = errors.New("document has no content")
	errNothingSaved   = errors.New("no chunk of the document could be saved")
)

// IngestOptions controls an ingestion run.
type IngestOptions struct {
	Workers     int
	UseChunking bool // false stores each document as one chunk
}

// IngestUseCase turns files into stored, embedded chunks.
type IngestUseCase struct {
	store    port.ChunkStore
	walker   port.FileWalker
	reader   port.FileReader
	pipeline *chunker.Pipeline
	tokens   *chunker.TokenCounter
	embedder *BatchEmbedder // nil when embedding is disabled
	opts     IngestOptions
	log      *slog.Logger
}

// NewIngestUseCase creates a new ingest use case. A nil embedder stores
// chunks without vectors.
func NewIngestUseCase(
	store port.ChunkStore,
	walker port.FileWalker,
	reader port.FileReader,
	pipeline *chunker.Pipeline,
	tokens *chunker.TokenCounter,
	embedder *BatchEmbedder,
	opts IngestOptions,
	log *slog.Logger,
) *IngestUseCase {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &IngestUseCase{
		store:    store,
		walker:   walker,
		reader:   reader,
		pipeline: pipeline,
		tokens:   tokens,
		embedder: embedder,
		opts:     opts,
		log:      log,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	FilesIngested       int
	FilesSkipped        int
	FilesDeleted        int
	FilesFailed         int
	ChunksCreated       int
	EmbeddingsGenerated int
	EmbeddingsFailed    int
	Methods             map[domain.ChunkMethod]int
	Errors              []string
}

// Progress is called once per processed file.
type Progress func(path string)

type fileOutcome int

const (
	outcomeIngested fileOutcome = iota
	outcomeSkipped
)

type fileStats struct {
	outcome    fileOutcome
	method     domain.ChunkMethod
	chunks     int
	embedded   int
	embedFails int
}

// Ingest ingests files under root. Per-file failures are recorded in the
// result; only walking, listing or cancellation errors abort the run.
func (u *IngestUseCase) Ingest(ctx context.Context, root string, progress Progress) (*IngestResult, error) {
	result := &IngestResult{Methods: make(map[domain.ChunkMethod]int)}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	existing := make(map[string]domain.Document, len(existingDocs))
	for _, doc := range existingDocs {
		existing[doc.Path] = doc
	}

	var mu sync.Mutex
	seen := make(map[string]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Workers)

	for _, file := range files {
		seen[file.Path] = true
		prev, hasPrev := existing[file.Path]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			stats, err := u.ingestFile(gctx, file, prev, hasPrev)

			mu.Lock()
			defer mu.Unlock()
			if progress != nil {
				progress(file.Path)
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				result.FilesFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("failed to ingest %s: %v", file.Path, err))
				u.log.Warn("ingest failed", "path", file.Path, "error", err)
				return nil
			}
			if stats.outcome == outcomeSkipped {
				result.FilesSkipped++
				return nil
			}
			result.FilesIngested++
			result.ChunksCreated += stats.chunks
			result.EmbeddingsGenerated += stats.embedded
			result.EmbeddingsFailed += stats.embedFails
			result.Methods[stats.method]++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for path, doc := range existing {
		if seen[path] {
			continue
		}
		if err := u.store.DeleteDoc(doc.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		result.FilesDeleted++
	}

	sort.Strings(result.Errors)
	return result, nil
}

func (u *IngestUseCase) ingestFile(ctx context.Context, file port.FileInfo, prev domain.Document, hasPrev bool) (fileStats, error) {
	if hasPrev && prev.ModTime.Unix() >= file.ModTime {
		return fileStats{outcome: outcomeSkipped}, nil
	}

	content, err := u.reader.ReadFile(file.Path)
	if err != nil {
		return fileStats{}, fmt.Errorf("failed to read file: %w", err)
	}
	hash := contentHash(content)

	if hasPrev && prev.ContentHash == hash {
		prev.ModTime = time.Unix(file.ModTime, 0)
		if err := u.store.PutDoc(prev); err != nil {
			return fileStats{}, fmt.Errorf("failed to refresh document: %w", err)
		}
		return fileStats{outcome: outcomeSkipped}, nil
	}

	docID := generateDocID(file.Path)
	if hasPrev {
		if err := u.store.DeleteChunksByDoc(prev.ID); err != nil {
			return fileStats{}, fmt.Errorf("failed to delete old chunks: %w", err)
		}
	}

	contentType := domain.ContentTypeForPath(file.Path)
	doc := domain.Document{
		ID:          docID,
		Path:        file.Path,
		Title:       DocumentTitle(content, contentType, file.Path),
		ContentType: contentType,
		ModTime:     time.Unix(file.ModTime, 0),
		ContentHash: hash,
		Size:        file.Size,
	}

	stats, err := u.storeChunks(ctx, doc, content)
	if err != nil {
		if hasPrev {
			// The previous version's chunks are gone; drop its record too.
			_ = u.store.DeleteDoc(prev.ID)
		}
		return fileStats{}, err
	}

	doc.ChunkCount = stats.chunks
	if err := u.store.PutDoc(doc); err != nil {
		return fileStats{}, fmt.Errorf("failed to store document: %w", err)
	}

	u.log.Debug("ingested document", "path", file.Path, "chunks", stats.chunks, "method", stats.method)
	return stats, nil
}

// Chunk splits content per the ingest options and reports the tier used.
func (u *IngestUseCase) Chunk(content string, contentType domain.ContentType) ([]string, domain.ChunkMethod) {
	if u.opts.UseChunking {
		return u.pipeline.ChunkDocumentWithMethod(content, contentType)
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{}, domain.MethodNone
	}
	return []string{trimmed}, domain.MethodWhole
}

func (u *IngestUseCase) storeChunks(ctx context.Context, doc domain.Document, content string) (fileStats, error) {
	texts, method := u.Chunk(content, doc.ContentType)
	if len(texts) == 0 {
		return fileStats{}, errEmptyDocument
	}

	stats := fileStats{outcome: outcomeIngested, method: method}

	var vectors [][]float32
	if u.embedder != nil {
		embedded, err := u.embedder.EmbedAll(ctx, texts)
		if err != nil {
			return fileStats{}, err
		}
		vectors = embedded.Vectors
		stats.embedFails = embedded.Failed
	}

	for i, text := range texts {
		var vec []float32
		if vectors != nil {
			if vec = vectors[i]; vec == nil {
				continue
			}
		}

		chunk := domain.Chunk{
			ID:     domain.ChunkID(doc.ID, i),
			DocID:  doc.ID,
			Index:  i,
			Text:   text,
			Tokens: u.tokens.Count(text),
			Method: method,
		}
		if err := u.store.SaveChunk(chunk, vec); err != nil {
			u.log.Warn("failed to save chunk", "doc", doc.Path, "index", i, "error", err)
			continue
		}
		stats.chunks++
		if vec != nil {
			stats.embedded++
		}
	}

	if stats.chunks == 0 {
		return fileStats{}, errNothingSaved
	}
	return stats, nil
}

// generateDocID creates a unique ID for a document based on its path.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}

func contentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
