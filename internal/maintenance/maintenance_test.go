package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
)

func TestCreateMentalHealthPartitionsIssuesOneStatementPerMonth(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "postgres")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS mental_health_").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS mental_health_").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS mental_health_").WillReturnResult(sqlmock.NewResult(0, 0))

	err = createMentalHealthPartitions(context.Background(), sqlxDB, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepStaleQueueMarksOnlyEntriesOlderThanCutoff(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "postgres")
	store := &rawstore.Store{DB: sqlxDB}

	staleID := uuid.New()
	freshID := uuid.New()
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "content_hash", "raw_payload", "payload_bytes", "status",
		"processed_count", "error_count", "error_detail", "received_at", "processed_at",
	}).
		AddRow(staleID, userID, "h1", []byte("{}"), 2, rawstore.StatusPending, 0, 0, nil, time.Now().Add(-2*time.Hour), nil).
		AddRow(freshID, userID, "h2", []byte("{}"), 2, rawstore.StatusPending, 0, 0, nil, time.Now(), nil)

	mock.ExpectQuery("SELECT (.|\n)*FROM raw_ingestions").WillReturnRows(rows)
	mock.ExpectExec("UPDATE raw_ingestions").
		WithArgs(rawstore.StatusError, 0, 0, sqlmock.AnyArg(), sqlmock.AnyArg(), staleID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := sweepStaleQueue(context.Background(), store, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
