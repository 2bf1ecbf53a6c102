package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// monthNames maps accent-free lowercase month names to month numbers.
var monthNames = map[string]int{
	"janvier": 1, "fevrier": 2, "mars": 3, "avril": 4, "mai": 5, "juin": 6,
	"juillet": 7, "aout": 8, "septembre": 9, "octobre": 10, "novembre": 11, "decembre": 12,

	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
}

const monthAlternation = `janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[uû]t|septembre|octobre|novembre|d[ée]cembre|` +
	`january|february|march|april|may|june|july|august|september|october|november|december`

// datePatterns are tried in order. Labelled forms come before bare dates.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*Date\*\*\s*:\s*(\d{1,2}\s+\p{L}+\s+\d{4})`),
	regexp.MustCompile(`(?i)Date\s*:\s*(?:\*\*)?\s*(\d{1,2}/\d{1,2}/\d{4})`),
	regexp.MustCompile(`(?i)Date\s*:\s*(?:\*\*)?\s*(\d{1,2}\s+\p{L}+\s+\d{4})`),
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
	regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
	regexp.MustCompile(`(?i)(\d{1,2}\s+(?:` + monthAlternation + `)\s+\d{4})`),
}

var (
	isoDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	textDate  = regexp.MustCompile(`^(\d{1,2})\s+(\p{L}+)\s+(\d{4})$`)
)

// ParseDate returns the first date found in text as YYYY-MM-DD.
// A match that cannot be normalised (unknown month name, impossible
// calendar date) is skipped and the next pattern is tried.
func ParseDate(text string) string {
	for _, p := range datePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if iso, ok := NormalizeDate(m[1]); ok {
				return iso
			}
		}
	}
	return ""
}

// NormalizeDate converts an ISO, DD/MM/YYYY or "D month YYYY" date to
// YYYY-MM-DD. Month names are matched case- and accent-insensitively.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	var day, month, year int
	switch {
	case isoDate.MatchString(raw):
		return raw, validDate(raw)
	case slashDate.MatchString(raw):
		m := slashDate.FindStringSubmatch(raw)
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	case textDate.MatchString(raw):
		m := textDate.FindStringSubmatch(raw)
		n, ok := monthNames[foldAccents(m[2])]
		if !ok {
			return "", false
		}
		day, _ = strconv.Atoi(m[1])
		month = n
		year, _ = strconv.Atoi(m[3])
	default:
		return "", false
	}

	iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return iso, validDate(iso)
}

func validDate(iso string) bool {
	_, err := time.Parse("2006-01-02", iso)
	return err == nil
}

// foldAccents lowercases s and strips combining marks.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
