package storage

import (
	"context"
	"errors"

	"github.com/estiacrm/marketintel/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyRunning = errors.New("a run is already in flight for this pair")
)

// OrgConfigStore persists per-tenant market intelligence configuration.
type OrgConfigStore interface {
	List(ctx context.Context) ([]models.OrgIntelConfig, error)
	Get(ctx context.Context, organizationID string) (models.OrgIntelConfig, error)
	Save(ctx context.Context, cfg models.OrgIntelConfig) error
}

// RunLogStore persists the append-only scrape audit trail. The open running
// row doubles as the per-pair dispatch lock: Start fails with
// ErrAlreadyRunning while one exists.
type RunLogStore interface {
	Start(ctx context.Context, log *models.ScrapeLog) error
	Finalize(ctx context.Context, log *models.ScrapeLog) error
	HasRunning(ctx context.Context, organizationID, platform string) (bool, error)
}

// ListingStore merges normalized listings into the tenant's listing set.
type ListingStore interface {
	// Upsert writes the listing under its dedup key and reports whether a
	// new row was created (false means an existing one was refreshed).
	Upsert(ctx context.Context, listing models.NormalizedListing, runID string) (created bool, err error)
	// DeactivateStale marks listings unseen for maxMissedRuns consecutive
	// successful runs as inactive and returns how many were deactivated.
	DeactivateStale(ctx context.Context, organizationID, platform, currentRunID string, maxMissedRuns int) (int64, error)
}

// RawArchive keeps the source-shaped listings of each run for replay and
// debugging; the pipeline never reads them on the hot path.
type RawArchive interface {
	ArchiveBatch(ctx context.Context, runID, organizationID, platform string, raws []models.RawListing) error
	FetchRun(ctx context.Context, runID string) ([]models.RawListing, error)
}
