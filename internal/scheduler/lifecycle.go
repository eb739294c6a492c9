package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/estiacrm/marketintel/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Enable turns the feature on for a tenant. A fresh or disabled config goes
// back to PENDING_SETUP with a clean failure slate.
func Enable(cfg models.OrgIntelConfig) (models.OrgIntelConfig, error) {
	switch cfg.Status {
	case "", models.StatusDisabled:
		cfg.Status = models.StatusPendingSetup
		cfg.ConsecutiveFailures = 0
		cfg.LastError = ""
		cfg.NextScrapeAt = nil
		cfg.PausedAt = nil
		cfg.UpdatedAt = time.Now()
		return cfg, nil
	default:
		return cfg, fmt.Errorf("%w: enable from %s", ErrInvalidTransition, cfg.Status)
	}
}

// Disable is allowed from any state and clears the next due time so that the
// pair drops out of scheduling immediately.
func Disable(cfg models.OrgIntelConfig) models.OrgIntelConfig {
	cfg.Status = models.StatusDisabled
	cfg.NextScrapeAt = nil
	cfg.PausedAt = nil
	cfg.UpdatedAt = time.Now()
	return cfg
}

// Pause suspends an active config manually. No PausedAt anchor is set, so
// the auto-resume cool-down does not apply; only Resume brings it back.
func Pause(cfg models.OrgIntelConfig) (models.OrgIntelConfig, error) {
	if cfg.Status != models.StatusActive {
		return cfg, fmt.Errorf("%w: pause from %s", ErrInvalidTransition, cfg.Status)
	}
	cfg.Status = models.StatusPaused
	cfg.UpdatedAt = time.Now()
	return cfg, nil
}

// Resume re-activates a paused config and resets the failure streak that may
// have auto-paused it.
func Resume(cfg models.OrgIntelConfig) (models.OrgIntelConfig, error) {
	if cfg.Status != models.StatusPaused {
		return cfg, fmt.Errorf("%w: resume from %s", ErrInvalidTransition, cfg.Status)
	}
	cfg.Status = models.StatusActive
	cfg.ConsecutiveFailures = 0
	cfg.PausedAt = nil
	cfg.UpdatedAt = time.Now()
	return cfg, nil
}

// MarkError routes a config to the ERROR state for failures that retrying
// cannot fix (missing platform config, permanent auth failure). Only Reset
// clears it.
func MarkError(cfg models.OrgIntelConfig, cause string) models.OrgIntelConfig {
	cfg.Status = models.StatusError
	cfg.LastError = cause
	cfg.NextScrapeAt = nil
	cfg.UpdatedAt = time.Now()
	return cfg
}

// Reset is the operator action that clears ERROR back to PENDING_SETUP.
func Reset(cfg models.OrgIntelConfig) (models.OrgIntelConfig, error) {
	if cfg.Status != models.StatusError {
		return cfg, fmt.Errorf("%w: reset from %s", ErrInvalidTransition, cfg.Status)
	}
	cfg.Status = models.StatusPendingSetup
	cfg.ConsecutiveFailures = 0
	cfg.LastError = ""
	cfg.NextScrapeAt = nil
	cfg.PausedAt = nil
	cfg.UpdatedAt = time.Now()
	return cfg, nil
}
