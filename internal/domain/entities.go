package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ContentType tags how a document's text is formatted.
type ContentType string

const (
	ContentPlain    ContentType = "plain"
	ContentMarkdown ContentType = "markdown"
)

// ParseContentType maps a loose content-type tag to a ContentType.
// Unknown tags are treated as plain text.
func ParseContentType(s string) ContentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "text/markdown":
		return ContentMarkdown
	default:
		return ContentPlain
	}
}

// ContentTypeForPath derives the content type from a file extension.
func ContentTypeForPath(path string) ContentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return ContentMarkdown
	default:
		return ContentPlain
	}
}

// ChunkMethod records which chunking tier produced a document's chunks.
type ChunkMethod string

const (
	MethodNone     ChunkMethod = "none"
	MethodSemantic ChunkMethod = "semantic"
	MethodFallback ChunkMethod = "fallback"
	MethodFixed    ChunkMethod = "fixed"
	MethodWhole    ChunkMethod = "whole"
)

type Document struct {
	ID          string
	Path        string
	Title       string
	ContentType ContentType
	ModTime     time.Time
	ContentHash string
	Size        int64
	ChunkCount  int
}

type Chunk struct {
	ID     string
	DocID  string
	Index  int
	Text   string
	Tokens int
	Method ChunkMethod
}

type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float32
	Model  string
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

type Stats struct {
	TotalDocs    int     `json:"total_docs"`
	TotalChunks  int     `json:"total_chunks"`
	TotalVectors int     `json:"total_vectors"`
	AvgChunkLen  float64 `json:"avg_chunk_len"`
	Dimension    int     `json:"dimension"`
}
