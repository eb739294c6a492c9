package scheduler

import (
	"testing"
	"time"

	"github.com/estiacrm/marketintel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnableFromFreshAndDisabled(t *testing.T) {
	got, err := Enable(models.OrgIntelConfig{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingSetup, got.Status)

	got = Disable(got)
	assert.Equal(t, models.StatusDisabled, got.Status)
	assert.Nil(t, got.NextScrapeAt)

	got, err = Enable(got)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingSetup, got.Status)
	assert.Zero(t, got.ConsecutiveFailures)
}

func TestEnableRejectsActive(t *testing.T) {
	_, err := Enable(models.OrgIntelConfig{Status: models.StatusActive})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDisableFromAnyState(t *testing.T) {
	next := time.Now()
	for _, status := range []models.OrgIntelStatus{
		models.StatusPendingSetup, models.StatusActive, models.StatusPaused, models.StatusError,
	} {
		cfg := models.OrgIntelConfig{Status: status, NextScrapeAt: &next}
		got := Disable(cfg)
		assert.Equal(t, models.StatusDisabled, got.Status)
		assert.Nil(t, got.NextScrapeAt, "disable must clear nextScrapeAt from %s", status)
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	cfg := models.OrgIntelConfig{Status: models.StatusActive, ConsecutiveFailures: 2}

	paused, err := Pause(cfg)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, paused.Status)
	assert.Nil(t, paused.PausedAt, "manual pause has no auto-resume anchor")

	resumed, err := Resume(paused)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, resumed.Status)
	assert.Zero(t, resumed.ConsecutiveFailures)

	_, err = Resume(resumed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkErrorAndReset(t *testing.T) {
	next := time.Now()
	cfg := models.OrgIntelConfig{Status: models.StatusActive, NextScrapeAt: &next}

	errored := MarkError(cfg, "platform config missing")
	assert.Equal(t, models.StatusError, errored.Status)
	assert.Equal(t, "platform config missing", errored.LastError)
	assert.Nil(t, errored.NextScrapeAt)

	reset, err := Reset(errored)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingSetup, reset.Status)
	assert.Empty(t, reset.LastError)

	_, err = Reset(reset)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
