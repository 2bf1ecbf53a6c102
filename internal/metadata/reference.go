package metadata

import (
	"regexp"
	"strings"
)

// referenceLabels are tried in order; a label may be wrapped in bold markers.
var referenceLabels = []string{
	"Texte", "Text", "Lecture", "Reading", "Référence", "Reference",
}

// referenceBody is an optional book ordinal, a book name, then chapter and
// verse digits with their separators, staying on one line.
const referenceBody = `((?:[1-3]\s*)?\p{L}+\s+\d+[\d:.,;\-– \t]*)`

var referencePatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(referenceLabels))
	for _, label := range referenceLabels {
		patterns = append(patterns, regexp.MustCompile(
			`(?i)(?:^|[^\p{L}])(?:\*\*)?`+label+`(?:\*\*)?[ \t]*:[ \t]*(?:\*\*)?[ \t]*`+referenceBody,
		))
	}
	return patterns
}()

// ParseReference returns the first labelled scripture reference, trimmed.
func ParseReference(text string) string {
	for _, p := range referencePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			ref := strings.TrimRight(strings.TrimSpace(m[1]), ",;:-–.")
			return strings.TrimSpace(ref)
		}
	}
	return ""
}
