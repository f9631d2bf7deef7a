package chunker

import "strings"

// MergeSmallChunks appends every chunk whose trimmed length is below
// minSize onto the chunk before it, separated by a blank line. A small
// chunk with no predecessor is dropped.
func MergeSmallChunks(chunks []string, minSize int) []string {
	merged := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if runeLen(strings.TrimSpace(chunk)) >= minSize {
			merged = append(merged, chunk)
			continue
		}
		if len(merged) > 0 {
			merged[len(merged)-1] += "\n\n" + chunk
		}
	}
	return merged
}
