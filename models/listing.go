package models

import (
	"fmt"
	"time"
)

// RawListing is one crawled item in its source-specific shape. Every field is
// optional free text; it lives only for the duration of one scrape cycle and
// is archived as-is for replay.
type RawListing struct {
	SourceListingID string            `bson:"source_listing_id" json:"source_listing_id"`
	SourceURL       string            `bson:"source_url" json:"source_url"`
	Title           string            `bson:"title,omitempty" json:"title,omitempty"`
	PriceText       string            `bson:"price_text,omitempty" json:"price_text,omitempty"`
	PropertyType    string            `bson:"property_type,omitempty" json:"property_type,omitempty"`
	TransactionType string            `bson:"transaction_type,omitempty" json:"transaction_type,omitempty"`
	Address         string            `bson:"address,omitempty" json:"address,omitempty"`
	Area            string            `bson:"area,omitempty" json:"area,omitempty"`
	Municipality    string            `bson:"municipality,omitempty" json:"municipality,omitempty"`
	PostalCode      string            `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	SizeText        string            `bson:"size_text,omitempty" json:"size_text,omitempty"`
	Bedrooms        string            `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms       string            `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Floor           string            `bson:"floor,omitempty" json:"floor,omitempty"`
	YearBuilt       string            `bson:"year_built,omitempty" json:"year_built,omitempty"`
	AgencyName      string            `bson:"agency_name,omitempty" json:"agency_name,omitempty"`
	AgencyPhone     string            `bson:"agency_phone,omitempty" json:"agency_phone,omitempty"`
	Images          []string          `bson:"images,omitempty" json:"images,omitempty"`
	ListingDate     string            `bson:"listing_date,omitempty" json:"listing_date,omitempty"`
	RawData         map[string]string `bson:"raw_data,omitempty" json:"raw_data,omitempty"`
}

// NormalizedListing is the canonical, tenant-scoped listing record. Numeric
// fields are pointers: nil means the source did not carry a usable value.
type NormalizedListing struct {
	OrganizationID  string     `db:"organization_id" json:"organization_id"`
	SourcePlatform  string     `db:"source_platform" json:"source_platform"`
	SourceListingID string     `db:"source_listing_id" json:"source_listing_id"`
	SourceURL       string     `db:"source_url" json:"source_url"`
	Title           string     `db:"title" json:"title"`
	Price           *int64     `db:"price" json:"price"`
	PricePerSqm     *int64     `db:"price_per_sqm" json:"price_per_sqm"`
	PropertyType    string     `db:"property_type" json:"property_type"`
	TransactionType string     `db:"transaction_type" json:"transaction_type"`
	Address         string     `db:"address" json:"address"`
	Area            string     `db:"area" json:"area"`
	Municipality    string     `db:"municipality" json:"municipality"`
	PostalCode      string     `db:"postal_code" json:"postal_code"`
	SizeSqm         *int64     `db:"size_sqm" json:"size_sqm"`
	Bedrooms        *int       `db:"bedrooms" json:"bedrooms"`
	Bathrooms       *int       `db:"bathrooms" json:"bathrooms"`
	Floor           string     `db:"floor" json:"floor"`
	YearBuilt       *int       `db:"year_built" json:"year_built"`
	AgencyName      string     `db:"agency_name" json:"agency_name"`
	AgencyPhone     string     `db:"agency_phone" json:"agency_phone"`
	Images          []string   `db:"-" json:"images"`
	ListingDate     *time.Time `db:"listing_date" json:"listing_date"`
}

// Canonical property type buckets. Every listing gets one; unmatched
// vocabulary falls back to PropertyOther, never an empty value.
const (
	PropertyApartment  = "APARTMENT"
	PropertyHouse      = "HOUSE"
	PropertyMaisonette = "MAISONETTE"
	PropertyStudio     = "STUDIO"
	PropertyVilla      = "VILLA"
	PropertyLand       = "LAND"
	PropertyCommercial = "COMMERCIAL"
	PropertyOffice     = "OFFICE"
	PropertyBuilding   = "BUILDING"
	PropertyWarehouse  = "WAREHOUSE"
	PropertyParking    = "PARKING"
	PropertyOther      = "OTHER"
)

const (
	TransactionSale = "sale"
	TransactionRent = "rent"
)

// DedupKey returns the identity under which the listing is upserted. Two
// listings with the same key are the same listing.
func (l *NormalizedListing) DedupKey() string {
	return fmt.Sprintf("%s:%s:%s", l.OrganizationID, l.SourcePlatform, l.SourceListingID)
}
