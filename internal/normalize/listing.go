// Package normalize converts raw, source-shaped listings into the canonical
// tenant-scoped schema. Every function here is pure and total: malformed
// input degrades to nil or a safe default, it never aborts a record.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/estiacrm/marketintel/models"
)

// Normalizer holds the immutable vocabulary tables. One instance is built at
// startup and shared by reference across concurrent normalization calls.
type Normalizer struct {
	vocab *Vocabulary
}

func New() *Normalizer {
	return &Normalizer{vocab: NewVocabulary()}
}

var listingDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// Normalize maps one raw platform listing into the canonical record for the
// given tenant. Normalizing the same raw listing twice yields an identical
// record, which is what makes re-ingestion and the keyed upsert safe.
func (n *Normalizer) Normalize(raw models.RawListing, platform, organizationID string) models.NormalizedListing {
	out := models.NormalizedListing{
		OrganizationID:  organizationID,
		SourcePlatform:  platform,
		SourceListingID: strings.TrimSpace(raw.SourceListingID),
		Title:           strings.TrimSpace(raw.Title),
		Price:           ParsePrice(raw.PriceText),
		PropertyType:    n.vocab.PropertyType(platform, raw.PropertyType),
		TransactionType: n.vocab.TransactionType(raw.TransactionType),
		Address:         strings.TrimSpace(raw.Address),
		Area:            n.vocab.Area(raw.Area),
		Municipality:    n.vocab.Area(raw.Municipality),
		PostalCode:      strings.Join(strings.Fields(raw.PostalCode), ""),
		SizeSqm:         ParseSize(raw.SizeText),
		Bedrooms:        parseInt(raw.Bedrooms),
		Bathrooms:       parseInt(raw.Bathrooms),
		Floor:           NormalizeFloor(raw.Floor),
		YearBuilt:       parseYear(raw.YearBuilt),
		AgencyName:      strings.TrimSpace(raw.AgencyName),
		AgencyPhone:     NormalizePhone(raw.AgencyPhone),
		Images:          raw.Images,
		ListingDate:     parseListingDate(raw.ListingDate),
	}
	if url, err := NormalizeSourceURL(raw.SourceURL); err == nil {
		out.SourceURL = url
	}
	out.PricePerSqm = pricePerSqm(out.Price, out.SizeSqm)
	return out
}

// pricePerSqm derives the rounded ratio; nil unless both inputs are present
// and the size is positive.
func pricePerSqm(price, size *int64) *int64 {
	if price == nil || size == nil || *size <= 0 {
		return nil
	}
	v := int64(math.Round(float64(*price) / float64(*size)))
	return &v
}

func parseYear(text string) *int {
	y := parseInt(text)
	if y == nil || *y < 1800 || *y > time.Now().Year()+2 {
		return nil
	}
	return y
}

func parseListingDate(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range listingDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}
