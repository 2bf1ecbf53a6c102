package metadata

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// maxFirstLineTitle is the exclusive rune limit for using the first line as title.
const maxFirstLineTitle = 100

var (
	headingTitle = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	boldTitle    = regexp.MustCompile(`(?m)^\*\*(.+)\*\*$`)
)

// Parse extracts metadata from text.
func Parse(text string) domain.Metadata {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return domain.Metadata{
		Title:     ParseTitle(text),
		Date:      ParseDate(text),
		Reference: ParseReference(text),
	}
}

// ParseTitle returns the first Markdown H1, else the first line wrapped in
// bold markers, else the first line when it is shorter than 100 characters.
func ParseTitle(text string) string {
	if m := headingTitle.FindStringSubmatch(text); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}
	if m := boldTitle.FindStringSubmatch(text); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}

	first := strings.TrimSpace(text)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = strings.TrimSpace(first[:i])
	}
	if n := utf8.RuneCountInString(first); n > 0 && n < maxFirstLineTitle {
		return first
	}
	return ""
}
