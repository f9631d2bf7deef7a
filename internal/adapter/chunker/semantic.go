package chunker

import (
	"strings"
	"unicode/utf8"
)

// SemanticChunker splits text along structural section boundaries such as
// list items, markdown headers and step markers.
type SemanticChunker struct {
	cfg Config
}

func NewSemanticChunker(cfg Config) *SemanticChunker {
	return &SemanticChunker{cfg: cfg.normalized()}
}

// lineCursor walks the document line by line. Sections advance it by the
// number of lines they consumed.
type lineCursor struct {
	lines []string
	pos   int
}

func newLineCursor(content string) *lineCursor {
	return &lineCursor{lines: strings.Split(content, "\n")}
}

func (c *lineCursor) done() bool      { return c.pos >= len(c.lines) }
func (c *lineCursor) current() string { return c.lines[c.pos] }
func (c *lineCursor) advance(n int) {
	if n < 1 {
		n = 1
	}
	c.pos += n
}

// pending holds non-section lines waiting to be emitted. size is the rune
// length of the lines joined with newlines.
type pending struct {
	lines []string
	size  int
}

func (p *pending) empty() bool { return len(p.lines) == 0 }

func (p *pending) exceeds(line string, max int) bool {
	return !p.empty() && p.size+1+runeLen(line) > max
}

func (p *pending) add(line string) {
	if !p.empty() {
		p.size++
	}
	p.lines = append(p.lines, line)
	p.size += runeLen(line)
}

func (p *pending) text() string {
	return strings.TrimSpace(strings.Join(p.lines, "\n"))
}

func (p *pending) reset() {
	p.lines = nil
	p.size = 0
}

// Chunk returns the semantic chunks of content, or nil when the document
// does not split into more than one chunk.
func (s *SemanticChunker) Chunk(content string) []string {
	cur := newLineCursor(content)
	var acc pending
	var chunks []string

	emit := func(text string) {
		if text != "" {
			chunks = append(chunks, text)
		}
	}

	for !cur.done() {
		line := cur.current()

		if IsSectionStart(line) {
			// Substantial pending text stands alone; a short prelude is
			// kept with the section it introduces.
			var prelude []string
			if acc.size >= s.cfg.MinSubstantialSize {
				emit(acc.text())
			} else if acc.text() != "" {
				prelude = acc.lines
			}
			acc.reset()

			section, consumed := CollectSection(cur.lines, cur.pos)
			parts := make([]string, 0, len(prelude)+len(section))
			parts = append(parts, prelude...)
			parts = append(parts, section...)
			text := strings.TrimSpace(strings.Join(parts, "\n"))

			if runeLen(text) > s.cfg.ChunkSize {
				for _, piece := range SplitLargeSection(text, s.cfg.ChunkSize) {
					emit(piece)
				}
			} else {
				emit(text)
			}

			cur.advance(consumed)
			continue
		}

		if acc.exceeds(line, s.cfg.ChunkSize) {
			emit(acc.text())
			acc.reset()
		}
		acc.add(line)
		cur.advance(1)
	}
	emit(acc.text())

	merged := MergeSmallChunks(chunks, s.cfg.MinMergeSize)
	if len(merged) <= 1 {
		return nil
	}
	return merged
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
