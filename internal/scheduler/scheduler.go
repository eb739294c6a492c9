// Package scheduler decides when each (organization, platform) pair is
// crawled next and drives the org config state machine from run outcomes.
package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/estiacrm/marketintel/models"
)

// baseIntervals maps the four frequency buckets to fixed durations.
var baseIntervals = map[models.ScrapeFrequency]time.Duration{
	models.FrequencyHourly:     time.Hour,
	models.FrequencyTwiceDaily: 12 * time.Hour,
	models.FrequencyDaily:      24 * time.Hour,
	models.FrequencyWeekly:     7 * 24 * time.Hour,
}

// backoffCaps bounds the failure backoff at the next-longer frequency
// bucket; weekly is capped at twice its own interval.
var backoffCaps = map[models.ScrapeFrequency]time.Duration{
	models.FrequencyHourly:     12 * time.Hour,
	models.FrequencyTwiceDaily: 24 * time.Hour,
	models.FrequencyDaily:      7 * 24 * time.Hour,
	models.FrequencyWeekly:     14 * 24 * time.Hour,
}

// Options are the operational tuning values of the controller. Defaults are
// deliberately conservative; see DESIGN.md for the rationale.
type Options struct {
	FailureThreshold int
	BackoffFactor    float64
	PauseCooldown    time.Duration
}

func DefaultOptions() Options {
	return Options{
		FailureThreshold: 3,
		BackoffFactor:    2.0,
		PauseCooldown:    24 * time.Hour,
	}
}

type Controller struct {
	opts Options
	now  func() time.Time
}

func NewController(opts Options) *Controller {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = DefaultOptions().FailureThreshold
	}
	if opts.BackoffFactor <= 1 {
		opts.BackoffFactor = DefaultOptions().BackoffFactor
	}
	if opts.PauseCooldown <= 0 {
		opts.PauseCooldown = DefaultOptions().PauseCooldown
	}
	return &Controller{opts: opts, now: time.Now}
}

// Pair identifies one schedulable (organization, platform) unit.
type Pair struct {
	OrganizationID string
	Platform       string
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.OrganizationID, p.Platform)
}

// InFlightChecker reports whether a run is currently open for a pair. The
// run log's running row is the lock: a pair with an open row is never due.
type InFlightChecker func(org, platform string) (bool, error)

// DueJobs selects every enabled pair whose config is runnable now. ACTIVE
// configs are due once nextScrapeAt has passed (or was never set);
// PENDING_SETUP configs are due immediately for their first run; PAUSED
// configs become due again once the auto-pause cool-down has elapsed. Pairs
// with an in-flight run are always excluded.
func (c *Controller) DueJobs(now time.Time, configs []models.OrgIntelConfig, inFlight InFlightChecker) ([]Pair, error) {
	var due []Pair
	for i := range configs {
		cfg := &configs[i]
		if !c.configDue(now, cfg) {
			continue
		}
		for _, platform := range cfg.Platforms {
			running, err := inFlight(cfg.OrganizationID, platform)
			if err != nil {
				return nil, fmt.Errorf("checking in-flight run for %s/%s: %w", cfg.OrganizationID, platform, err)
			}
			if running {
				continue
			}
			due = append(due, Pair{OrganizationID: cfg.OrganizationID, Platform: platform})
		}
	}
	return due, nil
}

func (c *Controller) configDue(now time.Time, cfg *models.OrgIntelConfig) bool {
	switch cfg.Status {
	case models.StatusPendingSetup:
		return true
	case models.StatusActive:
		return cfg.NextScrapeAt == nil || !cfg.NextScrapeAt.After(now)
	case models.StatusPaused:
		// only auto-paused configs resume on their own; a manual pause has
		// no PausedAt cool-down anchor either way
		return cfg.PausedAt != nil && now.Sub(*cfg.PausedAt) >= c.opts.PauseCooldown
	default:
		return false
	}
}

// ScheduleNext applies one run outcome to the config: failure accounting,
// backoff, auto-pause past the threshold, and the next due time. It returns
// the updated copy; persisting it is the caller's job.
func (c *Controller) ScheduleNext(cfg models.OrgIntelConfig, result models.ScrapeJobResult, completedAt time.Time) models.OrgIntelConfig {
	switch result.Status {
	case models.RunSuccess:
		cfg.ConsecutiveFailures = 0
		cfg.LastError = ""
	case models.RunPartial:
		// partial runs neither reset nor grow the failure streak
		if len(result.Errors) > 0 {
			cfg.LastError = result.Errors[0]
		}
	case models.RunFailed:
		cfg.ConsecutiveFailures++
		if len(result.Errors) > 0 {
			cfg.LastError = result.Errors[0]
		} else {
			cfg.LastError = "scrape failed"
		}
	}

	if cfg.Status == models.StatusPendingSetup || cfg.Status == models.StatusPaused {
		cfg.Status = models.StatusActive
		cfg.PausedAt = nil
	}
	if cfg.Status == models.StatusActive && cfg.ConsecutiveFailures >= c.opts.FailureThreshold {
		cfg.Status = models.StatusPaused
		pausedAt := completedAt
		cfg.PausedAt = &pausedAt
	}

	delay := c.Delay(cfg.ScrapeFrequency, cfg.ConsecutiveFailures)
	next := completedAt.Add(delay)
	cfg.LastScrapeAt = &completedAt
	cfg.NextScrapeAt = &next
	cfg.UpdatedAt = c.now()
	return cfg
}

// Delay computes the wait before the next attempt: the frequency's base
// interval, multiplied exponentially per consecutive failure and bounded by
// the bucket's cap. Zero failures always yield the base interval.
func (c *Controller) Delay(freq models.ScrapeFrequency, consecutiveFailures int) time.Duration {
	base, ok := baseIntervals[freq]
	if !ok {
		base = baseIntervals[models.FrequencyDaily]
	}
	if consecutiveFailures <= 0 {
		return base
	}
	cap, ok := backoffCaps[freq]
	if !ok {
		cap = backoffCaps[models.FrequencyDaily]
	}
	backed := time.Duration(float64(base) * math.Pow(c.opts.BackoffFactor, float64(consecutiveFailures)))
	if backed > cap || backed <= 0 {
		return cap
	}
	return backed
}
