package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so that accented Greek and Latin
// variants of the same token collide on one key ("Αθήνα" and "Αθηνα").
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var titleCaser = cases.Title(language.Und)

// foldKey lowercases, strips diacritics, maps final sigma to sigma and
// collapses inner whitespace. All vocabulary tables are keyed on its output.
func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(foldTransformer, s); err == nil {
		s = out
	}
	s = strings.ReplaceAll(s, "ς", "σ")
	return strings.Join(strings.Fields(s), " ")
}

// titleCase title-cases each whitespace-separated token, the best-effort
// fallback for area names missing from the canonical table.
func titleCase(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return titleCaser.String(s)
}
