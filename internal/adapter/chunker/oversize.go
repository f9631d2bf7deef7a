package chunker

import "strings"

// SplitLargeSection splits an over-length section on line boundaries.
// Lines are accumulated greedily; a line that alone exceeds maxSize becomes
// its own piece and is never cut.
func SplitLargeSection(section string, maxSize int) []string {
	lines := strings.Split(section, "\n")

	var pieces []string
	var buf []string
	size := 0

	flush := func() {
		if text := strings.TrimSpace(strings.Join(buf, "\n")); text != "" {
			pieces = append(pieces, text)
		}
		buf = buf[:0]
		size = 0
	}

	for _, line := range lines {
		lineLen := runeLen(line)
		if len(buf) > 0 && size+1+lineLen > maxSize {
			flush()
		}
		if len(buf) > 0 {
			size++
		}
		buf = append(buf, line)
		size += lineLen
	}
	flush()

	return pieces
}
