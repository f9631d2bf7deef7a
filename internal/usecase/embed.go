package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"

	"vectorconvert/internal/port"
)

const DefaultBatchSize = 2

// BatchEmbedder submits texts to an Embedder in fixed-size batches. A failed
// batch is retried one text at a time so a single bad input only loses
// itself. Memory is reclaimed between batches to keep peak usage flat on
// small hosts.
type BatchEmbedder struct {
	embedder  port.Embedder
	batchSize int
	reclaim   func()
	log       *slog.Logger
}

func NewBatchEmbedder(embedder port.Embedder, batchSize int, log *slog.Logger) *BatchEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BatchEmbedder{
		embedder:  embedder,
		batchSize: batchSize,
		reclaim:   reclaimMemory,
		log:       log,
	}
}

func reclaimMemory() {
	runtime.GC()
	debug.FreeOSMemory()
}

// EmbedResult holds one vector per input text; a nil vector marks a text
// that could not be embedded.
type EmbedResult struct {
	Vectors [][]float32
	Failed  int
	Batches int
}

// EmbedAll embeds every text. It only returns an error when ctx is done.
func (b *BatchEmbedder) EmbedAll(ctx context.Context, texts []string) (*EmbedResult, error) {
	result := &EmbedResult{Vectors: make([][]float32, len(texts))}

	for start := 0; start < len(texts); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		result.Batches++

		vecs, err := b.embedder.Embed(ctx, texts[start:end])
		if err == nil && len(vecs) != end-start {
			err = fmt.Errorf("%w: got %d vectors for %d texts", errEmptyEmbedding, len(vecs), end-start)
		}
		if err == nil && hasNil(vecs) {
			err = errEmptyEmbedding
		}
		if err == nil {
			copy(result.Vectors[start:end], vecs)
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			b.log.Warn("batch embedding failed, retrying per chunk",
				"batch", result.Batches, "size", end-start, "error", err)
			for i := start; i < end; i++ {
				vec, err := b.embedOne(ctx, texts[i])
				if err != nil {
					if ctx.Err() != nil {
						return nil, ctx.Err()
					}
					b.log.Warn("chunk embedding failed", "index", i, "error", err)
					result.Failed++
					continue
				}
				result.Vectors[i] = vec
			}
		}

		if end < len(texts) {
			b.reclaim()
		}
	}

	return result, nil
}

func hasNil(vecs [][]float32) bool {
	for _, v := range vecs {
		if v == nil {
			return true
		}
	}
	return false
}

func (b *BatchEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := b.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || vecs[0] == nil {
		return nil, errEmptyEmbedding
	}
	return vecs[0], nil
}
