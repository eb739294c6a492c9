package normalize

import "strings"

// NormalizePhone strips everything except digits and a leading "+". Numbers
// shorter than ten characters after stripping are rejected as unusable and
// come back empty.
func NormalizePhone(text string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(text) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if b.Len() < 10 {
		return ""
	}
	return b.String()
}
