// Package storage is the persistence boundary of the pipeline: postgres for
// org configs, run logs and the canonical listing set, mongo for the raw
// listing archive.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/estiacrm/marketintel/models"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewPostgresStore(dsn string, log *zap.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &PostgresStore{db: db, log: log}, nil
}

// NewPostgresStoreWithDB wraps an existing connection; used by tests.
func NewPostgresStoreWithDB(db *sqlx.DB, log *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) List(ctx context.Context) ([]models.OrgIntelConfig, error) {
	var configs []models.OrgIntelConfig
	if err := s.db.SelectContext(ctx, &configs, listOrgConfigs); err != nil {
		return nil, fmt.Errorf("failed to list org configs: %w", err)
	}
	return configs, nil
}

func (s *PostgresStore) Get(ctx context.Context, organizationID string) (models.OrgIntelConfig, error) {
	var cfg models.OrgIntelConfig
	err := s.db.GetContext(ctx, &cfg, getOrgConfig, organizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return cfg, fmt.Errorf("org config %s: %w", organizationID, ErrNotFound)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to get org config: %w", err)
	}
	return cfg, nil
}

func (s *PostgresStore) Save(ctx context.Context, cfg models.OrgIntelConfig) error {
	_, err := s.db.ExecContext(ctx, saveOrgConfig,
		cfg.OrganizationID, cfg.Platforms, cfg.Filters, cfg.ScrapeFrequency,
		cfg.MaxPagesPerPlatform, cfg.Status, cfg.LastScrapeAt, cfg.NextScrapeAt,
		cfg.PausedAt, cfg.LastError, cfg.ConsecutiveFailures, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save org config %s: %w", cfg.OrganizationID, err)
	}
	return nil
}

// Start opens the run's audit row. The partial unique index on running rows
// is the mutual-exclusion guarantee: a concurrent start for the same pair
// surfaces as ErrAlreadyRunning.
func (s *PostgresStore) Start(ctx context.Context, log *models.ScrapeLog) error {
	meta, err := json.Marshal(log.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, startScrapeLog,
		log.RunID, log.OrganizationID, log.Platform, log.StartedAt, meta)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%s/%s: %w", log.OrganizationID, log.Platform, ErrAlreadyRunning)
	}
	if err != nil {
		return fmt.Errorf("failed to start scrape log: %w", err)
	}
	log.Status = models.RunRunning
	return nil
}

// Finalize closes the run exactly once; a second call finds no running row.
func (s *PostgresStore) Finalize(ctx context.Context, log *models.ScrapeLog) error {
	res, err := s.db.ExecContext(ctx, finalizeScrapeLog,
		log.RunID, log.Status, log.CompletedAt, log.ListingsFound, log.ListingsNew,
		log.ListingsUpdated, log.ListingsDeactivated, log.PagesScraped,
		log.ScrapeDurationMs, log.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to finalize scrape log %s: %w", log.RunID, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("scrape log %s: %w", log.RunID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) HasRunning(ctx context.Context, organizationID, platform string) (bool, error) {
	var running bool
	if err := s.db.GetContext(ctx, &running, hasRunningScrape, organizationID, platform); err != nil {
		return false, fmt.Errorf("failed to check running scrape: %w", err)
	}
	return running, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, l models.NormalizedListing, runID string) (bool, error) {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return false, fmt.Errorf("failed to marshal images: %w", err)
	}
	var inserted bool
	err = s.db.GetContext(ctx, &inserted, upsertListing,
		l.OrganizationID, l.SourcePlatform, l.SourceListingID, l.SourceURL,
		l.Title, l.Price, l.PricePerSqm, l.PropertyType, l.TransactionType,
		l.Address, l.Area, l.Municipality, l.PostalCode, l.SizeSqm,
		l.Bedrooms, l.Bathrooms, l.Floor, l.YearBuilt, l.AgencyName,
		l.AgencyPhone, images, l.ListingDate, runID)
	if err != nil {
		return false, fmt.Errorf("failed to upsert listing %s: %w", l.DedupKey(), err)
	}
	return inserted, nil
}

// DeactivateStale advances the miss counter of every active listing the
// current run did not re-observe, then soft-removes the ones past the
// threshold. Called only after fully successful runs so that a failed crawl
// never ages the listing set.
func (s *PostgresStore) DeactivateStale(ctx context.Context, organizationID, platform, currentRunID string, maxMissedRuns int) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin deactivation tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, bumpMissedRuns, organizationID, platform, currentRunID); err != nil {
		return 0, fmt.Errorf("failed to bump missed runs: %w", err)
	}
	res, err := tx.ExecContext(ctx, deactivateStale, organizationID, platform, maxMissedRuns)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate stale listings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deactivated listings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deactivation tx: %w", err)
	}
	if n > 0 {
		s.log.Info("deactivated stale listings",
			zap.String("organization", organizationID),
			zap.String("platform", platform),
			zap.Int64("count", n))
	}
	return n, nil
}
