package registry

import (
	"strings"
	"unicode"
)

// Normalizer maps a raw entity name to the canonical form used for identity
// comparison. Two candidates with the same type and the same normalized name
// are treated as the same entity.
type Normalizer interface {
	Normalize(name string) string
}

// TitleCaseNormalizer is the default Normalizer. It trims surrounding
// whitespace and title-cases each word, except that short all-letter names
// (four characters or fewer) are upper-cased on the assumption that they are
// acronyms, so "ibm" and "IBM" collapse while "ceo" stays "CEO" rather than
// "Ceo".
type TitleCaseNormalizer struct{}

func (TitleCaseNormalizer) Normalize(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 && isAllLetters(trimmed) {
		return strings.ToUpper(trimmed)
	}

	words := strings.Fields(trimmed)
	for i, word := range words {
		words[i] = titleWord(word)
	}
	return strings.Join(words, " ")
}

func titleWord(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isAllLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
