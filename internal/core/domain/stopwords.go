package domain

import "strings"

// frenchStopWords are the French function words removed from full-text queries.
var frenchStopWords = []string{
	// articles
	"le", "la", "les", "un", "une", "des", "du", "de", "l",
	// prepositions
	"à", "a", "au", "aux", "avec", "dans", "en", "par", "pour", "sur", "sous", "vers", "chez",
	// pronouns
	"je", "tu", "il", "elle", "on", "nous", "vous", "ils", "elles", "me", "te", "se",
	"lui", "leur", "moi", "toi", "soi",
	"ce", "cet", "cette", "ces", "ceci", "cela", "ça", "qui", "que", "quoi", "dont", "où",
	// possessives
	"mon", "ma", "mes", "ton", "ta", "tes", "son", "sa", "ses", "notre", "nos", "votre", "vos", "leurs",
	// conjunctions
	"et", "ou", "mais", "donc", "or", "ni", "car", "si", "comme", "quand", "lorsque",
	// elided forms
	"qu", "jusqu", "lorsqu", "puisqu", "quoiqu",
	// common verbs
	"est", "sont", "suis", "es", "sommes", "êtes", "être", "etre",
	"ai", "as", "avons", "avez", "ont", "avoir",
	"fait", "faire", "fais", "faisons", "faites", "font",
	// adverbs and others
	"ne", "pas", "plus", "moins", "très", "bien", "mal", "tout", "tous", "toute", "toutes",
	"y", "là", "ici", "alors", "aussi", "encore", "même", "autre", "autres",
}

var englishStopWords = []string{
	"the", "a", "an", "of", "to", "in", "on", "at", "by", "for", "with", "from", "into",
	"and", "or", "but", "if", "as", "so", "than", "then",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
	"my", "your", "his", "its", "our", "their", "this", "that", "these", "those",
	"who", "whom", "what", "which", "where", "when", "why", "how",
	"is", "am", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did",
	"not", "no", "all", "any", "some", "more", "most", "very", "also", "too",
}

// SupportedLocale reports whether locale has its own stop-word list.
func SupportedLocale(locale string) bool {
	switch strings.ToLower(locale) {
	case "fr", "en":
		return true
	default:
		return false
	}
}

// StopWordsFor returns the stop-word set for a locale ("fr" or "en").
// Unknown locales fall back to French, the corpus language.
func StopWordsFor(locale string) StopWords {
	if strings.ToLower(locale) == "en" {
		return NewStopWords(englishStopWords...)
	}
	return NewStopWords(frenchStopWords...)
}
