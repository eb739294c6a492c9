package fetch

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estiacrm/marketintel/internal/platform"
)

const cardHTML = `
<div class="card" data-id="sg-777">
  <a class="link" href="/aggelia/777">Διαμέρισμα 92 τ.μ. στο Κολωνάκι</a>
  <span class="price">245.000€</span>
  <span class="type">Διαμέρισμα</span>
  <span class="deal">Πώληση</span>
  <span class="area">Κολωνάκι</span>
  <span class="size">92 τ.μ.</span>
  <span class="floor">3ος</span>
  <img class="photo" src="/img/777.jpg"/>
</div>`

var testSelectors = platform.Selectors{
	"list":             ".card",
	"id":               "@data-id",
	"url":              "a.link@href",
	"title":            "a.link",
	"price":            ".price",
	"property_type":    ".type",
	"transaction_type": ".deal",
	"area":             ".area",
	"size":             ".size",
	"floor":            ".floor",
	"image":            ".photo@src",
}

func TestExtractListing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	require.NoError(t, err)
	card := doc.Find(".card")
	require.Equal(t, 1, card.Length())

	resolve := func(ref string) string { return "https://spitogatos.gr" + ref }
	raw := extractListing(card, testSelectors, resolve)

	assert.Equal(t, "sg-777", raw.SourceListingID)
	assert.Equal(t, "https://spitogatos.gr/aggelia/777", raw.SourceURL)
	assert.Equal(t, "Διαμέρισμα 92 τ.μ. στο Κολωνάκι", raw.Title)
	assert.Equal(t, "245.000€", raw.PriceText)
	assert.Equal(t, "Διαμέρισμα", raw.PropertyType)
	assert.Equal(t, "Πώληση", raw.TransactionType)
	assert.Equal(t, "Κολωνάκι", raw.Area)
	assert.Equal(t, "92 τ.μ.", raw.SizeText)
	assert.Equal(t, "3ος", raw.Floor)
	assert.Equal(t, []string{"https://spitogatos.gr/img/777.jpg"}, raw.Images)
}

func TestExtractListingMissingSelectorsDegrade(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	require.NoError(t, err)
	card := doc.Find(".card")

	raw := extractListing(card, platform.Selectors{"id": "@data-id"}, func(s string) string { return s })
	assert.Equal(t, "sg-777", raw.SourceListingID)
	assert.Empty(t, raw.Title)
	assert.Empty(t, raw.PriceText)
	assert.Nil(t, raw.Images)
}
