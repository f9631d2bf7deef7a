package usecase

import (
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"vectorconvert/internal/domain"
)

var titleParser = goldmark.New().Parser()

// DocumentTitle returns the first markdown heading of content, or the file
// name without extension.
func DocumentTitle(content string, contentType domain.ContentType, path string) string {
	if contentType == domain.ContentMarkdown {
		src := []byte(content)
		doc := titleParser.Parse(text.NewReader(src))
		for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
			if h, ok := n.(*ast.Heading); ok {
				if title := strings.TrimSpace(string(h.Lines().Value(src))); title != "" {
					return title
				}
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
