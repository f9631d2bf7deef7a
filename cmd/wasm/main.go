//go:build js && wasm

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"syscall/js"
	"time"

	"vectorconvert/internal/adapter/chunker"
	"vectorconvert/internal/adapter/embedding"
	"vectorconvert/internal/adapter/memstore"
	"vectorconvert/internal/domain"
	"vectorconvert/internal/port"
	"vectorconvert/internal/usecase"
)

const previewDimension = 256

var (
	store    *memstore.MemoryStore
	embedder port.Embedder
	chk      port.Chunker
)

func init() {
	store = memstore.NewMemoryStore()
	embedder = embedding.NewMockEmbedder(previewDimension)
	chk = chunker.NewPipeline(chunker.DefaultConfig(), nil)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("vcChunk", js.FuncOf(chunkContent))
	js.Global().Set("vcIndex", js.FuncOf(indexContent))
	js.Global().Set("vcSearch", js.FuncOf(searchContent))
	js.Global().Set("vcClear", js.FuncOf(clearIndex))
	js.Global().Set("vcStats", js.FuncOf(getStats))

	<-c
}

// chunkContent previews chunking: vcChunk(content, [type], [size], [overlap]).
func chunkContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: vcChunk(content, [type], [size], [overlap])")
	}

	content := args[0].String()
	contentType := domain.ContentPlain
	if len(args) > 1 {
		contentType = domain.ParseContentType(args[1].String())
	}

	cfg := chunker.DefaultConfig()
	if len(args) > 2 && args[2].Int() > 0 {
		cfg.ChunkSize = args[2].Int()
	}
	if len(args) > 3 && args[3].Int() >= 0 {
		cfg.ChunkOverlap = args[3].Int()
	}

	chunks, method := chunker.NewPipeline(cfg, nil).ChunkDocumentWithMethod(content, contentType)
	return makeResult(map[string]interface{}{
		"method": method,
		"chunks": chunks,
	})
}

func indexContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: vcIndex(filename, content)")
	}

	filename := args[0].String()
	content := args[1].String()
	contentType := domain.ContentTypeForPath(filename)

	texts := chk.ChunkDocument(content, contentType)
	if len(texts) == 0 {
		return makeError("document is empty")
	}

	vectors, err := embedder.Embed(context.Background(), texts)
	if err != nil {
		return makeError("embedding failed: " + err.Error())
	}

	docID := generateDocID(filename)
	store.DeleteDoc(docID)
	for i, text := range texts {
		chunk := domain.Chunk{
			ID:     domain.ChunkID(docID, i),
			DocID:  docID,
			Index:  i,
			Text:   text,
			Tokens: chunker.EstimateTokens(text),
		}
		if err := store.SaveChunk(chunk, vectors[i]); err != nil {
			return makeError("indexing failed: " + err.Error())
		}
	}

	doc := domain.Document{
		ID:          docID,
		Path:        filename,
		Title:       usecase.DocumentTitle(content, contentType, filename),
		ContentType: contentType,
		ModTime:     time.Now(),
		Size:        int64(len(content)),
		ChunkCount:  len(texts),
	}
	if err := store.PutDoc(doc); err != nil {
		return makeError("indexing failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"success": true,
		"docId":   docID,
		"chunks":  len(texts),
	})
}

func searchContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: vcSearch(query, [topK])")
	}

	query := args[0].String()
	topK := usecase.DefaultTopK
	if len(args) > 1 && args[1].Int() > 0 {
		topK = args[1].Int()
	}

	results, err := usecase.NewSearchUseCase(store, embedder, 0).Search(context.Background(), query, topK)
	if err != nil {
		return makeError("search failed: " + err.Error())
	}

	items := make([]map[string]interface{}, len(results))
	for i, r := range results {
		items[i] = map[string]interface{}{
			"file":  r.Path,
			"title": r.Title,
			"index": r.Chunk.Index,
			"score": r.Score,
			"text":  r.Chunk.Text,
		}
	}
	return makeResult(map[string]interface{}{
		"results": items,
	})
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	store = memstore.NewMemoryStore()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	stats, _ := store.GetStats()
	docs, _ := store.ListDocs()

	filenames := make([]string, len(docs))
	for i, doc := range docs {
		filenames[i] = doc.Path
	}

	return makeResult(map[string]interface{}{
		"totalDocs":   stats.TotalDocs,
		"totalChunks": stats.TotalChunks,
		"avgChunkLen": stats.AvgChunkLen,
		"files":       filenames,
	})
}

func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
