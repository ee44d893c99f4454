package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics, so "Sí" and "si" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Words splits folded text into letter/digit runs.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries.
// Both sides are folded first.
func ContainsPhrase(text, phrase string) bool {
	return PhraseIndex(text, phrase) >= 0
}

// PhraseIndex is the word position of the first occurrence of phrase in
// text, or -1.
func PhraseIndex(text, phrase string) int {
	haystack := Words(text)
	needle := Words(phrase)
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// TitleCase capitalizes every word, Spanish rules.
func TitleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}

// NormalizePhone strips channel prefixes so "whatsapp:+51987..." and
// "51987..." name the same customer.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "whatsapp:")
	return strings.TrimPrefix(phone, "+")
}
