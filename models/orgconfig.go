package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ScrapeFrequency string

const (
	FrequencyHourly     ScrapeFrequency = "HOURLY"
	FrequencyTwiceDaily ScrapeFrequency = "TWICE_DAILY"
	FrequencyDaily      ScrapeFrequency = "DAILY"
	FrequencyWeekly     ScrapeFrequency = "WEEKLY"
)

type OrgIntelStatus string

const (
	StatusPendingSetup OrgIntelStatus = "PENDING_SETUP"
	StatusActive       OrgIntelStatus = "ACTIVE"
	StatusPaused       OrgIntelStatus = "PAUSED"
	StatusError        OrgIntelStatus = "ERROR"
	StatusDisabled     OrgIntelStatus = "DISABLED"
)

// ScrapeFilters narrows what a tenant wants crawled. Stored as jsonb.
type ScrapeFilters struct {
	Areas            []string `json:"areas,omitempty"`
	Municipalities   []string `json:"municipalities,omitempty"`
	TransactionTypes []string `json:"transaction_types,omitempty"`
	PropertyTypes    []string `json:"property_types,omitempty"`
	MinPrice         int64    `json:"min_price,omitempty"`
	MaxPrice         int64    `json:"max_price,omitempty"`
}

func (f ScrapeFilters) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *ScrapeFilters) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	case nil:
		*f = ScrapeFilters{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ScrapeFilters", src)
	}
}

// StringList is a jsonb-backed string slice column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// OrgIntelConfig is the per-tenant market intelligence configuration and the
// state machine the scheduler drives. It is only ever mutated by the
// scheduler/backoff controller after a run, or by explicit operator action;
// never concurrently for the same organization.
type OrgIntelConfig struct {
	OrganizationID      string          `db:"organization_id"`
	Platforms           StringList      `db:"platforms"`
	Filters             ScrapeFilters   `db:"filters"`
	ScrapeFrequency     ScrapeFrequency `db:"scrape_frequency"`
	MaxPagesPerPlatform int             `db:"max_pages_per_platform"`
	Status              OrgIntelStatus  `db:"status"`
	LastScrapeAt        *time.Time      `db:"last_scrape_at"`
	NextScrapeAt        *time.Time      `db:"next_scrape_at"`
	PausedAt            *time.Time      `db:"paused_at"`
	LastError           string          `db:"last_error"`
	ConsecutiveFailures int             `db:"consecutive_failures"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// PlatformEnabled reports whether the tenant has turned on the given source.
func (c *OrgIntelConfig) PlatformEnabled(platform string) bool {
	for _, p := range c.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}
