package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/estiacrm/marketintel/internal/platform"
	"github.com/estiacrm/marketintel/models"
)

// Selector convention: a plain value is a CSS selector whose text is taken;
// "selector@attr" takes an attribute instead. The "list" key selects the
// repeated listing card; every other key is resolved inside one card.
const listKey = "list"

func pick(card *goquery.Selection, spec string) string {
	if spec == "" {
		return ""
	}
	sel, attr, hasAttr := strings.Cut(spec, "@")
	target := card
	if sel != "" {
		target = card.Find(sel)
	}
	if hasAttr {
		return strings.TrimSpace(target.AttrOr(attr, ""))
	}
	return strings.TrimSpace(target.Text())
}

// extractListing maps one listing card to a RawListing using the platform's
// selector table. Missing selectors simply leave fields empty; the
// normalizer downstream is total over absent input.
func extractListing(card *goquery.Selection, selectors platform.Selectors, resolveURL func(string) string) models.RawListing {
	raw := models.RawListing{
		SourceListingID: pick(card, selectors["id"]),
		Title:           pick(card, selectors["title"]),
		PriceText:       pick(card, selectors["price"]),
		PropertyType:    pick(card, selectors["property_type"]),
		TransactionType: pick(card, selectors["transaction_type"]),
		Address:         pick(card, selectors["address"]),
		Area:            pick(card, selectors["area"]),
		Municipality:    pick(card, selectors["municipality"]),
		PostalCode:      pick(card, selectors["postal_code"]),
		SizeText:        pick(card, selectors["size"]),
		Bedrooms:        pick(card, selectors["bedrooms"]),
		Bathrooms:       pick(card, selectors["bathrooms"]),
		Floor:           pick(card, selectors["floor"]),
		YearBuilt:       pick(card, selectors["year_built"]),
		AgencyName:      pick(card, selectors["agency"]),
		AgencyPhone:     pick(card, selectors["phone"]),
		ListingDate:     pick(card, selectors["date"]),
	}
	if href := pick(card, selectors["url"]); href != "" {
		raw.SourceURL = resolveURL(href)
	}
	if img := pick(card, selectors["image"]); img != "" {
		raw.Images = []string{resolveURL(img)}
	}
	return raw
}
