package alunos

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases and strips diacritics so "José" matches "jose".
// Stored alongside the display name for search.
func NormalizeName(name string) string {
	normalized, _, err := transform.String(stripAccents, name)
	if err != nil {
		normalized = name
	}
	return strings.ToLower(strings.TrimSpace(normalized))
}
