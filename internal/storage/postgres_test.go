package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estiacrm/marketintel/models"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStoreWithDB(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock
}

func TestStartScrapeLog(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(startScrapeLog)).
		WithArgs("run-1", "org-1", "spitogatos", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	log := &models.ScrapeLog{
		RunID:          "run-1",
		OrganizationID: "org-1",
		Platform:       "spitogatos",
		StartedAt:      time.Now(),
	}
	require.NoError(t, store.Start(context.Background(), log))
	assert.Equal(t, models.RunRunning, log.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartScrapeLogPairAlreadyRunning(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(startScrapeLog)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_scrape_logs_running"})

	err := store.Start(context.Background(), &models.ScrapeLog{
		RunID:          "run-2",
		OrganizationID: "org-1",
		Platform:       "spitogatos",
		StartedAt:      time.Now(),
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeScrapeLog(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(finalizeScrapeLog)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	completed := time.Now()
	log := &models.ScrapeLog{
		RunID:       "run-1",
		Status:      models.RunSuccess,
		CompletedAt: &completed,
	}
	require.NoError(t, store.Finalize(context.Background(), log))

	// a second finalize finds no running row
	mock.ExpectExec(regexp.QuoteMeta(finalizeScrapeLog)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.Finalize(context.Background(), log), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRunning(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(hasRunningScrape)).
		WithArgs("org-1", "xe").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	running, err := store.HasRunning(context.Background(), "org-1", "xe")
	require.NoError(t, err)
	assert.True(t, running)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertListingReportsCreated(t *testing.T) {
	store, mock := newMockStore(t)
	price := int64(250000)
	listing := models.NormalizedListing{
		OrganizationID:  "org-1",
		SourcePlatform:  "spitogatos",
		SourceListingID: "sg-1",
		Price:           &price,
		PropertyType:    models.PropertyApartment,
		TransactionType: models.TransactionSale,
	}

	mock.ExpectQuery(regexp.QuoteMeta(upsertListing)).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	created, err := store.Upsert(context.Background(), listing, "run-1")
	require.NoError(t, err)
	assert.True(t, created)

	// re-ingesting the same dedup key refreshes instead of duplicating
	mock.ExpectQuery(regexp.QuoteMeta(upsertListing)).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))
	created, err = store.Upsert(context.Background(), listing, "run-2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateStale(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(bumpMissedRuns)).
		WithArgs("org-1", "spitogatos", "run-9").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(deactivateStale)).
		WithArgs("org-1", "spitogatos", 3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := store.DeactivateStale(context.Background(), "org-1", "spitogatos", "run-9", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOrgConfig(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(saveOrgConfig)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cfg := models.OrgIntelConfig{
		OrganizationID:  "org-1",
		Platforms:       models.StringList{"spitogatos"},
		ScrapeFrequency: models.FrequencyDaily,
		Status:          models.StatusActive,
		UpdatedAt:       time.Now(),
	}
	require.NoError(t, store.Save(context.Background(), cfg))
	assert.NoError(t, mock.ExpectationsWereMet())
}
