// Package runner executes one scrape job end to end: lock the pair, open the
// run log, stream the crawl through normalization into the listing store,
// archive the raw batch, then close the log with the final counters.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estiacrm/marketintel/internal/normalize"
	"github.com/estiacrm/marketintel/internal/platform"
	"github.com/estiacrm/marketintel/internal/storage"
	"github.com/estiacrm/marketintel/models"
)

// Crawler is the boundary to the crawl executor. Implementations stream raw
// listings through emit as pages arrive.
type Crawler interface {
	Crawl(ctx context.Context, job models.ScrapeJobData, pc platform.Config, emit func(models.RawListing)) (pagesScraped int, pageErrors []string, err error)
}

type Options struct {
	DeactivateAfterRuns int
	LockTTL             time.Duration
}

func DefaultRunnerOptions() Options {
	return Options{DeactivateAfterRuns: 3, LockTTL: 30 * time.Minute}
}

type Runner struct {
	registry *platform.Registry
	crawler  Crawler
	norm     *normalize.Normalizer
	runLogs  storage.RunLogStore
	listings storage.ListingStore
	archive  storage.RawArchive
	seen     SeenFilter
	locks    PairLock
	opts     Options
	log      *zap.Logger
}

func New(
	registry *platform.Registry,
	crawler Crawler,
	runLogs storage.RunLogStore,
	listings storage.ListingStore,
	archive storage.RawArchive,
	seen SeenFilter,
	locks PairLock,
	opts Options,
	log *zap.Logger,
) *Runner {
	if opts.DeactivateAfterRuns <= 0 {
		opts.DeactivateAfterRuns = DefaultRunnerOptions().DeactivateAfterRuns
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultRunnerOptions().LockTTL
	}
	return &Runner{
		registry: registry,
		crawler:  crawler,
		norm:     normalize.New(),
		runLogs:  runLogs,
		listings: listings,
		archive:  archive,
		seen:     seen,
		locks:    locks,
		opts:     opts,
		log:      log,
	}
}

// Run executes the job and reports its result. The returned error covers
// dispatch-level failures only (unknown platform, pair already running);
// crawl and store problems are folded into the result's status and errors.
func (r *Runner) Run(ctx context.Context, job models.ScrapeJobData) (models.ScrapeJobResult, error) {
	result := models.ScrapeJobResult{
		OrganizationID: job.OrganizationID,
		Platform:       job.Platform,
		Status:         models.RunFailed,
	}

	pc, err := r.registry.Get(job.Platform)
	if err != nil {
		return result, err
	}

	release, ok, err := r.locks.Acquire(ctx, job.OrganizationID, job.Platform, r.opts.LockTTL)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, storage.ErrAlreadyRunning
	}
	defer release()

	runID := uuid.NewString()
	started := time.Now()
	runLog := &models.ScrapeLog{
		RunID:          runID,
		OrganizationID: job.OrganizationID,
		Platform:       job.Platform,
		Status:         models.RunRunning,
		StartedAt:      started,
	}
	if err := r.runLogs.Start(ctx, runLog); err != nil {
		return result, err
	}

	seenKey := seenFilterKey(runID)
	if err := r.seen.Reserve(ctx, seenKey); err != nil {
		r.log.Warn("could not reserve seen filter, duplicates may double count",
			zap.String("run_id", runID), zap.Error(err))
	}

	var rawBatch []models.RawListing
	emit := func(raw models.RawListing) {
		rawBatch = append(rawBatch, raw)
		if raw.SourceListingID == "" {
			result.Errors = append(result.Errors, "listing without source id skipped")
			return
		}
		listing := r.norm.Normalize(raw, job.Platform, job.OrganizationID)
		fresh, err := r.seen.AddIfNew(ctx, seenKey, listing.DedupKey())
		if err != nil {
			r.log.Warn("seen filter check failed", zap.String("run_id", runID), zap.Error(err))
		} else if !fresh {
			// the portal repeated this card on a later page
			return
		}
		result.ListingsFound++
		created, err := r.listings.Upsert(ctx, listing, runID)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("upsert %s: %v", listing.SourceListingID, err))
			return
		}
		if created {
			result.ListingsNew++
		} else {
			result.ListingsUpdated++
		}
	}

	pages, pageErrors, crawlErr := r.crawler.Crawl(ctx, job, pc, emit)
	result.PagesScraped = pages
	result.Errors = append(result.Errors, pageErrors...)

	if len(rawBatch) > 0 {
		if err := r.archive.ArchiveBatch(ctx, runID, job.OrganizationID, job.Platform, rawBatch); err != nil {
			r.log.Warn("raw archive write failed", zap.String("run_id", runID), zap.Error(err))
		}
	}

	switch {
	case crawlErr != nil:
		result.Status = models.RunFailed
		result.Errors = append(result.Errors, crawlErr.Error())
	case len(pageErrors) > 0:
		result.Status = models.RunPartial
	default:
		result.Status = models.RunSuccess
	}

	if result.Status == models.RunSuccess {
		deactivated, err := r.listings.DeactivateStale(ctx,
			job.OrganizationID, job.Platform, runID, r.opts.DeactivateAfterRuns)
		if err != nil {
			r.log.Error("stale listing sweep failed",
				zap.String("run_id", runID), zap.Error(err))
		} else {
			result.ListingsDeactivated = int(deactivated)
		}
	}

	completed := time.Now()
	result.Duration = completed.Sub(started)

	runLog.Status = result.Status
	runLog.CompletedAt = &completed
	runLog.ListingsFound = result.ListingsFound
	runLog.ListingsNew = result.ListingsNew
	runLog.ListingsUpdated = result.ListingsUpdated
	runLog.ListingsDeactivated = result.ListingsDeactivated
	runLog.PagesScraped = result.PagesScraped
	runLog.ScrapeDurationMs = result.Duration.Milliseconds()
	if crawlErr != nil {
		runLog.ErrorMessage = crawlErr.Error()
	}

	// close the log even when the job was cancelled mid crawl
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := r.runLogs.Finalize(fctx, runLog); err != nil {
		r.log.Error("could not finalize run log",
			zap.String("run_id", runID), zap.Error(err))
	}

	r.log.Info("scrape run finished",
		zap.String("run_id", runID),
		zap.String("organization_id", job.OrganizationID),
		zap.String("platform", job.Platform),
		zap.String("status", string(result.Status)),
		zap.Int("pages", result.PagesScraped),
		zap.Int("found", result.ListingsFound),
		zap.Int("new", result.ListingsNew),
		zap.Int("updated", result.ListingsUpdated),
		zap.Int("deactivated", result.ListingsDeactivated),
		zap.Duration("took", result.Duration))

	return result, nil
}
