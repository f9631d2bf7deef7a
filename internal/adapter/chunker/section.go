package chunker

import (
	"regexp"
	"strings"
)

var (
	numberedItem = regexp.MustCompile(`^\d+\.\s`)
	letteredItem = regexp.MustCompile(`^[a-zA-Z]\.\s`)
	bulletItem   = regexp.MustCompile(`^[-*•]\s`)
	stepMarker   = regexp.MustCompile(`^(step|phase|stage)\s*\d+`)

	subItem        = regexp.MustCompile(`^\s*[a-zA-Z]\.|^\s*[-*•]`)
	topLevelNumber = regexp.MustCompile(`^\d+\.`)
)

// IsSectionStart reports whether line opens a structural section: a
// numbered, lettered or bulleted list item, a markdown header, or a
// step/phase/stage marker.
func IsSectionStart(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	switch {
	case numberedItem.MatchString(line),
		letteredItem.MatchString(line),
		bulletItem.MatchString(line),
		strings.HasPrefix(line, "#"),
		stepMarker.MatchString(strings.ToLower(line)):
		return true
	}
	return false
}

// CollectSection gathers the section that starts at lines[start] and
// returns its lines along with how many lines it consumed.
//
// Continuation is permissive: any line that is not itself a section start
// and not a top-level numbered item joins the section, so trailing prose
// after a list item is absorbed into that item.
func CollectSection(lines []string, start int) ([]string, int) {
	if start < 0 || start >= len(lines) {
		return nil, 0
	}

	section := []string{lines[start]}
	i := start + 1

	for i < len(lines) {
		raw := lines[i]
		line := strings.TrimSpace(raw)

		if line == "" {
			section = append(section, raw)
			i++
			continue
		}

		if IsSectionStart(line) {
			break
		}

		if strings.HasPrefix(raw, "  ") ||
			strings.HasPrefix(raw, "\t") ||
			subItem.MatchString(line) ||
			!topLevelNumber.MatchString(line) {
			section = append(section, raw)
			i++
			continue
		}

		break
	}

	return section, i - start
}
