package matcher

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	extPattern   = regexp.MustCompile(`\.[a-z0-9]+$`)
	delimPattern = regexp.MustCompile(`[-_.()\s\p{Z}]+`)
)

// foldDiacritics decomposes accented letters and drops the combining marks,
// e.g. "é" -> "e". A new transformer is built per call since transform.Chain
// keeps internal state and is not safe for concurrent use.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize converts a raw filename into its comparable form: lowercase,
// diacritics folded, last extension removed, delimiters collapsed to single
// spaces and trimmed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(foldDiacritics(strings.ToLower(s)))
	s = extPattern.ReplaceAllString(s, "")
	return collapse(s)
}

// NormalizeName is Normalize without the extension step. Names and email
// local parts go through here so "jean.martin" keeps its second half.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	return collapse(foldDiacritics(strings.ToLower(s)))
}

func collapse(s string) string {
	return strings.TrimSpace(delimPattern.ReplaceAllString(s, " "))
}
