package domain

import (
	"strings"
	"unicode/utf8"
)

// StopWords is a set of lowercase function words dropped from queries.
type StopWords map[string]struct{}

// NewStopWords builds a set from a word list.
func NewStopWords(words ...string) StopWords {
	s := make(StopWords, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Contains reports whether word (in any case) is a stop word.
func (s StopWords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// queryStrip removes double quotes outright; querySpace turns the
// full-text operator characters into separators. Apostrophes separate too,
// so an elided word ("l'amour") is searched the way the tokenizer indexed it.
var (
	queryStrip = strings.NewReplacer("\"", "")
	querySpace = strings.NewReplacer(
		"(", " ", ")", " ", "{", " ", "}", " ", "[", " ", "]", " ",
		"^", " ", "~", " ", "*", " ", "?", " ", ":", " ", "\\", " ",
		"+", " ", "-", " ", "'", " ", "’", " ",
	)
)

// QueryTerms extracts the searchable terms of a free-text query.
// Operator characters are removed, then terms shorter than two characters
// and stop words are dropped. The result is empty for a query made only of
// stop words and single characters.
func QueryTerms(query string, stop StopWords) []string {
	cleaned := querySpace.Replace(queryStrip.Replace(query))

	var terms []string //nolint:prealloc // most queries drop some words
	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) <= 1 {
			continue
		}
		if stop.Contains(word) {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}
