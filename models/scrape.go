package models

import "time"

type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
	RunPartial RunStatus = "partial"
)

// ScrapeJobData is the contract handed to the crawl executor: one attempt of
// crawling one platform for one organization.
type ScrapeJobData struct {
	OrganizationID string        `json:"organization_id"`
	Platform       string        `json:"platform"`
	Filters        ScrapeFilters `json:"filters,omitempty"`
	MaxPages       int           `json:"max_pages,omitempty"`
	StartPage      int           `json:"start_page,omitempty"`
}

// ScrapeJobResult is what a finished job reports back to the scheduler and
// telemetry.
type ScrapeJobResult struct {
	OrganizationID      string        `json:"organization_id"`
	Platform            string        `json:"platform"`
	Status              RunStatus     `json:"status"`
	ListingsFound       int           `json:"listings_found"`
	ListingsNew         int           `json:"listings_new"`
	ListingsUpdated     int           `json:"listings_updated"`
	ListingsDeactivated int           `json:"listings_deactivated"`
	PagesScraped        int           `json:"pages_scraped"`
	Duration            time.Duration `json:"duration"`
	Errors              []string      `json:"errors,omitempty"`
}

// ScrapeLog is the append-only audit record of one run. Inserted with
// status=running when the job starts and finalized exactly once when it ends.
type ScrapeLog struct {
	RunID               string         `db:"run_id"`
	OrganizationID      string         `db:"organization_id"`
	Platform            string         `db:"platform"`
	Status              RunStatus      `db:"status"`
	StartedAt           time.Time      `db:"started_at"`
	CompletedAt         *time.Time     `db:"completed_at"`
	ListingsFound       int            `db:"listings_found"`
	ListingsNew         int            `db:"listings_new"`
	ListingsUpdated     int            `db:"listings_updated"`
	ListingsDeactivated int            `db:"listings_deactivated"`
	PagesScraped        int            `db:"pages_scraped"`
	ScrapeDurationMs    int64          `db:"scrape_duration_ms"`
	ErrorMessage        string         `db:"error_message"`
	Metadata            map[string]any `db:"-"`
}
