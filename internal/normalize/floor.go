package normalize

import (
	"regexp"
	"strings"
)

// namedFloors maps named floor tokens to the signed numeric-string scale.
// Keys are diacritic-folded (see foldKey). Order matters: "ημιυπογειο"
// contains "υπογειο", so the longer stems come first.
var namedFloors = []struct {
	stem  string
	level string
}{
	{"ημιυπογει", "-0.5"},
	{"ημιισογει", "0.5"},
	{"ημιωροφ", "0.5"},
	{"υπογει", "-1"},
	{"ισογει", "0"},
	{"semi-basement", "-0.5"},
	{"semi basement", "-0.5"},
	{"semi-ground", "0.5"},
	{"semi ground", "0.5"},
	{"mezzanine", "0.5"},
	{"basement", "-1"},
	{"ground", "0"},
}

var floorDigits = regexp.MustCompile(`-?\d+`)

// NormalizeFloor maps a free-text floor description to a signed
// numeric-string scale: basement "-1", semi-basement "-0.5", ground "0",
// semi-ground "0.5", Nth floor "N". If no named floor matches, the first
// integer run wins; failing that, the trimmed original passes through so
// floor information is never silently dropped.
func NormalizeFloor(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	key := foldKey(trimmed)
	for _, f := range namedFloors {
		if strings.Contains(key, f.stem) {
			return f.level
		}
	}
	if m := floorDigits.FindString(trimmed); m != "" {
		return m
	}
	return trimmed
}
