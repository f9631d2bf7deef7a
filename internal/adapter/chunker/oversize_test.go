package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLargeSection_SingleLongLine(t *testing.T) {
	line := strings.Repeat("a", 5000)

	pieces := SplitLargeSection(line, 1000)
	require.Len(t, pieces, 1)
	assert.Equal(t, line, pieces[0])
}

func TestSplitLargeSection_GreedyLines(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = strings.Repeat("x", 30)
	}
	section := strings.Join(lines, "\n")

	pieces := SplitLargeSection(section, 100)
	require.Len(t, pieces, 4)
	for _, p := range pieces {
		assert.LessOrEqual(t, runeLen(p), 100)
	}
	assert.Equal(t, section, strings.Join(pieces, "\n"))
}

func TestSplitLargeSection_LongLineIsolated(t *testing.T) {
	long := strings.Repeat("L", 200)
	section := "short\n" + long + "\nshort2"

	pieces := SplitLargeSection(section, 100)
	assert.Equal(t, []string{"short", long, "short2"}, pieces)
}
