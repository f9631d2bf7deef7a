package port

import "vectorconvert/internal/domain"

// Chunker splits document text into an ordered list of chunk strings.
type Chunker interface {
	ChunkDocument(content string, contentType domain.ContentType) []string
}
