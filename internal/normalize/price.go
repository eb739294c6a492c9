package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRun  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	sizeNumber = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:τ\.?\s?μ\.?|τμ|m²|m2|sq\.?\s?m|sqm)?`)

	priceStripper = strings.NewReplacer(
		"€", "", "$", "", "£", "",
		"ευρώ", "", "euro", "", "eur", "",
		" ", "", " ", "", "\t", "",
	)
)

// ParsePrice extracts an integer price from free text in European number
// format: "." is a thousands separator, "," a decimal point. Returns nil when
// the text carries no numeric run.
func ParsePrice(text string) *int64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	s := priceStripper.Replace(strings.ToLower(strings.TrimSpace(text)))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	m := numberRun.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	v := int64(math.Round(f))
	return &v
}

// ParseSize extracts an integer square-meter figure from free text such as
// "85 τ.μ." or "120,5 m²". "," is accepted as a decimal separator. Returns
// nil when no number is present.
func ParseSize(text string) *int64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m := sizeNumber.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return nil
	}
	v := int64(math.Round(f))
	return &v
}

var intRun = regexp.MustCompile(`-?\d+`)

// parseInt pulls the first integer run out of free text; nil if none.
func parseInt(text string) *int {
	m := intRun.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}
