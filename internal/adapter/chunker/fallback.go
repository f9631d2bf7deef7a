package chunker

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"vectorconvert/internal/domain"
)

// plainSeparators are tried in order, coarsest first.
var plainSeparators = []string{"\n\n\n", "\n\n", "\n", ". ", ", ", " ", ""}

// separatorSlack is the longest entry of plainSeparators. The recursive
// splitter can overshoot its target by one separator when it merges an
// overlap piece with the next split, so it is given that much headroom.
const separatorSlack = 3

// FallbackSplitter is the general-purpose recursive splitter used when the
// semantic pass does not apply. Markdown input is first cut at headings.
type FallbackSplitter struct {
	chunkSize int
	plain     textsplitter.RecursiveCharacter
	markdown  goldmark.Markdown
}

func NewFallbackSplitter(chunkSize, chunkOverlap int) *FallbackSplitter {
	cfg := Config{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}.normalized()

	target, overlap := cfg.ChunkSize, cfg.ChunkOverlap
	if target > separatorSlack {
		target -= separatorSlack
	}
	if overlap >= target {
		overlap = target - 1
	}

	return &FallbackSplitter{
		chunkSize: cfg.ChunkSize,
		plain: textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators(plainSeparators),
			textsplitter.WithChunkSize(target),
			textsplitter.WithChunkOverlap(overlap),
		),
		markdown: goldmark.New(),
	}
}

// Split divides content into chunks of at most the configured size, with
// adjacent chunks overlapping by up to the configured overlap.
func (f *FallbackSplitter) Split(content string, contentType domain.ContentType) ([]string, error) {
	if contentType == domain.ContentMarkdown {
		return f.splitMarkdown(content)
	}
	return f.splitPlain(content)
}

func (f *FallbackSplitter) splitPlain(content string) ([]string, error) {
	pieces, err := f.plain.SplitText(content)
	if err != nil {
		return nil, fmt.Errorf("recursive split: %w", err)
	}
	return f.bounded(nonBlank(pieces)), nil
}

// bounded re-cuts any piece longer than the chunk size into fixed slices.
func (f *FallbackSplitter) bounded(pieces []string) []string {
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if runeLen(p) <= f.chunkSize {
			out = append(out, p)
			continue
		}
		out = append(out, nonBlank(FixedSplit(p, f.chunkSize))...)
	}
	return out
}

func (f *FallbackSplitter) splitMarkdown(content string) ([]string, error) {
	var chunks []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		if bufLen > 0 {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
		bufLen = 0
	}

	for _, section := range markdownSections(f.markdown, []byte(content)) {
		sectionLen := runeLen(section)

		if sectionLen > f.chunkSize {
			flush()
			pieces, err := f.splitPlain(section)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, pieces...)
			continue
		}

		if bufLen > 0 && bufLen+2+sectionLen > f.chunkSize {
			flush()
		}
		if bufLen > 0 {
			buf.WriteString("\n\n")
			bufLen += 2
		}
		buf.WriteString(section)
		bufLen += sectionLen
	}
	flush()

	return chunks, nil
}

// markdownSections cuts src immediately before every top-level heading.
// Heading-like lines inside code blocks are not headings to the parser and
// are left alone.
func markdownSections(md goldmark.Markdown, src []byte) []string {
	doc := md.Parser().Parse(text.NewReader(src))

	cuts := []int{0}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		start := heading.Lines().At(0).Start
		if nl := bytes.LastIndexByte(src[:start], '\n'); nl >= 0 {
			start = nl + 1
		} else {
			start = 0
		}
		if start > cuts[len(cuts)-1] {
			cuts = append(cuts, start)
		}
	}
	cuts = append(cuts, len(src))

	var sections []string
	for i := 0; i+1 < len(cuts); i++ {
		if s := strings.TrimSpace(string(src[cuts[i]:cuts[i+1]])); s != "" {
			sections = append(sections, s)
		}
	}
	return sections
}

func nonBlank(pieces []string) []string {
	out := pieces[:0]
	for _, p := range pieces {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
