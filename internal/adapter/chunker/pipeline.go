package chunker

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"vectorconvert/internal/domain"
)

// Pipeline runs the tiered chunking strategy: semantic first, then the
// recursive fallback, then fixed slicing. ChunkDocument never fails.
type Pipeline struct {
	cfg      Config
	semantic *SemanticChunker
	fallback *FallbackSplitter
	log      *slog.Logger
}

func NewPipeline(cfg Config, log *slog.Logger) *Pipeline {
	cfg = cfg.normalized()
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		cfg:      cfg,
		semantic: NewSemanticChunker(cfg),
		fallback: NewFallbackSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		log:      log,
	}
}

// Config returns the effective (normalized) configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// ChunkDocument splits content into an ordered list of non-empty chunks.
func (p *Pipeline) ChunkDocument(content string, contentType domain.ContentType) []string {
	chunks, _ := p.ChunkDocumentWithMethod(content, contentType)
	return chunks
}

// ChunkDocumentWithMethod is ChunkDocument that also reports which tier
// produced the result.
func (p *Pipeline) ChunkDocumentWithMethod(content string, contentType domain.ContentType) ([]string, domain.ChunkMethod) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{}, domain.MethodNone
	}
	if runeLen(trimmed) <= p.cfg.ChunkSize {
		return []string{trimmed}, domain.MethodWhole
	}

	if chunks := p.trySemantic(content); len(chunks) > 1 {
		if withinBounds(chunks, p.cfg.ChunkSize) {
			return chunks, domain.MethodSemantic
		}
		p.log.Debug("semantic chunks exceed size, using fallback", "chunks", len(chunks))
	}

	chunks, err := p.tryFallback(content, contentType)
	if err == nil && len(chunks) > 0 {
		return chunks, domain.MethodFallback
	}
	if err != nil {
		p.log.Warn("fallback splitter failed, using fixed slices", "error", err)
	}

	return nonBlank(FixedSplit(trimmed, p.cfg.ChunkSize)), domain.MethodFixed
}

func (p *Pipeline) trySemantic(content string) (chunks []string) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("semantic chunking failed", "panic", r)
			chunks = nil
		}
	}()
	return p.semantic.Chunk(content)
}

func (p *Pipeline) tryFallback(content string, contentType domain.ContentType) (chunks []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunks, err = nil, fmt.Errorf("fallback splitter panic: %v", r)
		}
	}()
	return p.fallback.Split(content, contentType)
}

// withinBounds accepts a chunk over maxSize only when it is a single
// unsplittable line.
func withinBounds(chunks []string, maxSize int) bool {
	for _, c := range chunks {
		if runeLen(c) > maxSize && strings.Contains(c, "\n") {
			return false
		}
	}
	return true
}

// Chunk is a convenience wrapper that chunks content with the default
// merge thresholds and the given size parameters.
func Chunk(content string, contentType domain.ContentType, chunkSize, chunkOverlap int) []string {
	cfg := DefaultConfig()
	cfg.ChunkSize = chunkSize
	cfg.ChunkOverlap = chunkOverlap
	return NewPipeline(cfg, nil).ChunkDocument(content, contentType)
}
