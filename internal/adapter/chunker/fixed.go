package chunker

// FixedSplit cuts content into contiguous slices of exactly chunkSize
// runes; the last slice may be shorter. It has no failure mode.
func FixedSplit(content string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	runes := []rune(content)
	if len(runes) <= chunkSize {
		return []string{content}
	}

	chunks := make([]string, 0, (len(runes)+chunkSize-1)/chunkSize)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
