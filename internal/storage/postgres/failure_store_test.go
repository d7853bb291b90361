package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"mediadex/internal/crawl"
)

func failureRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"url", "name", "reason", "raw_text", "error_message",
		"retry_count", "created_at", "updated_at",
	})
}

func TestFailureStoreUpsert(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFailureStore(mock)
	rec := crawl.NewFailedParse("http://x/d/", "d", crawl.ReasonNoMedia, "raw row", "")

	mock.ExpectExec("INSERT INTO failed_parses").
		WithArgs(rec.URL, rec.Name, rec.Reason, rec.RawText, rec.ErrorText).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Upsert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureStoreDelete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFailureStore(mock)
	mock.ExpectExec("DELETE FROM failed_parses").
		WithArgs("http://x/d/").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.Delete(context.Background(), "http://x/d/"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureStoreListRetryable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFailureStore(mock)
	now := time.Unix(1700000000, 0).UTC()
	mock.ExpectQuery("FROM failed_parses").
		WillReturnRows(failureRows().
			AddRow("http://x/b/", "b", crawl.ReasonTimeout, "", "timed out", 1, now, now).
			AddRow("http://x/a/", "a", crawl.ReasonNoMedia, "", "", 3, now, now))

	recs, err := store.ListRetryable(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "http://x/b/", recs[0].URL)
	require.Equal(t, 1, recs[0].RetryCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureStoreDecrementRetry(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFailureStore(mock)
	mock.ExpectExec("UPDATE failed_parses").
		WithArgs("http://x/d/").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.DecrementRetry(context.Background(), "http://x/d/"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureStoreDecrementRetryMissingIsNoop(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFailureStore(mock)
	mock.ExpectExec("UPDATE failed_parses").
		WithArgs("http://x/absent/").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, store.DecrementRetry(context.Background(), "http://x/absent/"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureStoreMarkForRetry(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFailureStore(mock)
	mock.ExpectExec("UPDATE failed_parses").
		WithArgs("http://x/d/", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.MarkForRetry(context.Background(), "http://x/d/", 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureStoreMarkForRetryMissing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewFailureStore(mock)
	mock.ExpectExec("UPDATE failed_parses").
		WithArgs("http://x/absent/", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.MarkForRetry(context.Background(), "http://x/absent/", 3)
	require.ErrorIs(t, err, crawl.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
