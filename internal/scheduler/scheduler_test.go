package scheduler

import (
	"testing"
	"time"

	"github.com/estiacrm/marketintel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noInFlight(string, string) (bool, error) { return false, nil }

func activeConfig(org string, next time.Time) models.OrgIntelConfig {
	return models.OrgIntelConfig{
		OrganizationID:  org,
		Platforms:       models.StringList{"spitogatos", "xe"},
		ScrapeFrequency: models.FrequencyDaily,
		Status:          models.StatusActive,
		NextScrapeAt:    &next,
	}
}

func TestDueJobsSelectsOverdueActivePairs(t *testing.T) {
	c := NewController(DefaultOptions())
	now := time.Now()

	configs := []models.OrgIntelConfig{
		activeConfig("org-due", now.Add(-time.Minute)),
		activeConfig("org-future", now.Add(time.Hour)),
	}

	due, err := c.DueJobs(now, configs, noInFlight)
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{OrganizationID: "org-due", Platform: "spitogatos"},
		{OrganizationID: "org-due", Platform: "xe"},
	}, due)
}

func TestDueJobsExcludesInFlightPair(t *testing.T) {
	c := NewController(DefaultOptions())
	now := time.Now()
	configs := []models.OrgIntelConfig{activeConfig("org-1", now.Add(-time.Minute))}

	inFlight := func(org, platform string) (bool, error) {
		return platform == "spitogatos", nil
	}
	due, err := c.DueJobs(now, configs, inFlight)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{OrganizationID: "org-1", Platform: "xe"}}, due)
}

func TestDueJobsIncludesPendingSetup(t *testing.T) {
	c := NewController(DefaultOptions())
	cfg := models.OrgIntelConfig{
		OrganizationID:  "org-new",
		Platforms:       models.StringList{"xe"},
		ScrapeFrequency: models.FrequencyDaily,
		Status:          models.StatusPendingSetup,
	}
	due, err := c.DueJobs(time.Now(), []models.OrgIntelConfig{cfg}, noInFlight)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestDueJobsSkipsDisabledErrorAndManuallyPaused(t *testing.T) {
	c := NewController(DefaultOptions())
	now := time.Now()
	past := now.Add(-time.Hour)

	for _, status := range []models.OrgIntelStatus{models.StatusDisabled, models.StatusError, models.StatusPaused} {
		cfg := activeConfig("org-1", past)
		cfg.Status = status
		due, err := c.DueJobs(now, []models.OrgIntelConfig{cfg}, noInFlight)
		require.NoError(t, err)
		assert.Empty(t, due, "status %s must not be due", status)
	}
}

func TestDueJobsResumesAutoPausedAfterCooldown(t *testing.T) {
	opts := DefaultOptions()
	opts.PauseCooldown = time.Hour
	c := NewController(opts)
	now := time.Now()

	pausedAt := now.Add(-2 * time.Hour)
	cfg := activeConfig("org-1", now.Add(-time.Minute))
	cfg.Status = models.StatusPaused
	cfg.PausedAt = &pausedAt

	due, err := c.DueJobs(now, []models.OrgIntelConfig{cfg}, noInFlight)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	// not yet cooled down
	recent := now.Add(-time.Minute)
	cfg.PausedAt = &recent
	due, err = c.DueJobs(now, []models.OrgIntelConfig{cfg}, noInFlight)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func result(status models.RunStatus, errs ...string) models.ScrapeJobResult {
	return models.ScrapeJobResult{Status: status, Errors: errs}
}

func TestScheduleNextSuccessResetsFailures(t *testing.T) {
	c := NewController(DefaultOptions())
	completed := time.Now()

	cfg := activeConfig("org-1", completed)
	cfg.ConsecutiveFailures = 2
	cfg.LastError = "boom"

	got := c.ScheduleNext(cfg, result(models.RunSuccess), completed)
	assert.Equal(t, 0, got.ConsecutiveFailures)
	assert.Empty(t, got.LastError)
	assert.Equal(t, models.StatusActive, got.Status)
	require.NotNil(t, got.NextScrapeAt)
	assert.Equal(t, completed.Add(24*time.Hour), *got.NextScrapeAt)
	require.NotNil(t, got.LastScrapeAt)
	assert.Equal(t, completed, *got.LastScrapeAt)
}

func TestScheduleNextPartialLeavesFailuresUntouched(t *testing.T) {
	c := NewController(DefaultOptions())
	completed := time.Now()

	cfg := activeConfig("org-1", completed)
	cfg.ConsecutiveFailures = 1

	got := c.ScheduleNext(cfg, result(models.RunPartial, "page 3 timed out"), completed)
	assert.Equal(t, 1, got.ConsecutiveFailures)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Equal(t, "page 3 timed out", got.LastError)
}

func TestBackoffMonotonicityAndCap(t *testing.T) {
	c := NewController(DefaultOptions())
	completed := time.Now()
	cfg := activeConfig("org-1", completed)
	cfg.ScrapeFrequency = models.FrequencyHourly

	var prev time.Duration
	capped := false
	for i := 0; i < 6; i++ {
		cfg = c.ScheduleNext(cfg, result(models.RunFailed, "portal unreachable"), completed)
		delay := cfg.NextScrapeAt.Sub(completed)
		if capped {
			assert.Equal(t, prev, delay, "delay must stay at the cap")
		} else {
			assert.Greater(t, delay, prev, "delay must strictly grow until the cap")
		}
		if delay == 12*time.Hour {
			capped = true
		}
		assert.LessOrEqual(t, delay, 12*time.Hour, "hourly backoff is capped at the next bucket")
		prev = delay
	}
	assert.True(t, capped)

	// a success resets the delay to the base interval
	cfg.Status = models.StatusActive
	cfg = c.ScheduleNext(cfg, result(models.RunSuccess), completed)
	assert.Equal(t, time.Hour, cfg.NextScrapeAt.Sub(completed))
}

func TestAutoPauseAfterThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.FailureThreshold = 3
	c := NewController(opts)
	completed := time.Now()
	cfg := activeConfig("org-1", completed)

	for i := 0; i < 3; i++ {
		assert.Equal(t, models.StatusActive, cfg.Status)
		cfg = c.ScheduleNext(cfg, result(models.RunFailed, "boom"), completed)
	}
	assert.Equal(t, models.StatusPaused, cfg.Status)
	assert.Equal(t, 3, cfg.ConsecutiveFailures)
	require.NotNil(t, cfg.PausedAt)

	// a paused pair is no longer scheduled
	due, err := c.DueJobs(completed.Add(time.Minute), []models.OrgIntelConfig{cfg}, noInFlight)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestFirstRunActivatesPendingSetup(t *testing.T) {
	c := NewController(DefaultOptions())
	completed := time.Now()
	cfg := models.OrgIntelConfig{
		OrganizationID:  "org-new",
		Platforms:       models.StringList{"xe"},
		ScrapeFrequency: models.FrequencyDaily,
		Status:          models.StatusPendingSetup,
	}
	got := c.ScheduleNext(cfg, result(models.RunSuccess), completed)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestDelayUnknownFrequencyFallsBackToDaily(t *testing.T) {
	c := NewController(DefaultOptions())
	assert.Equal(t, 24*time.Hour, c.Delay(models.ScrapeFrequency("BOGUS"), 0))
}
