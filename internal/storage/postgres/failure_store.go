package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mediadex/internal/crawl"
)

// FailureStore implements crawl.FailureStore on Postgres.
type FailureStore struct {
	db Querier
}

// NewFailureStore constructs a FailureStore on the given pool.
func NewFailureStore(db Querier) *FailureStore {
	return &FailureStore{db: db}
}

// Upsert creates or refreshes the record for rec.URL. The retry count of an
// existing record is left alone; only the operator and the retry driver
// touch it.
func (s *FailureStore) Upsert(ctx context.Context, rec crawl.FailedParse) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO failed_parses (url, name, reason, raw_text, error_message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE SET
			name = EXCLUDED.name,
			reason = EXCLUDED.reason,
			raw_text = EXCLUDED.raw_text,
			error_message = EXCLUDED.error_message,
			updated_at = NOW()`,
		rec.URL, rec.Name, rec.Reason, rec.RawText, rec.ErrorText,
	)
	if err != nil {
		return fmt.Errorf("upsert failed parse: %w", err)
	}
	return nil
}

// Delete removes the record for url, if any.
func (s *FailureStore) Delete(ctx context.Context, url string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM failed_parses WHERE url = $1`, url); err != nil {
		return fmt.Errorf("delete failed parse: %w", err)
	}
	return nil
}

// ListRetryable returns records with retry_count > 0, least-retried first.
func (s *FailureStore) ListRetryable(ctx context.Context) ([]crawl.FailedParse, error) {
	rows, err := s.db.Query(ctx, `
		SELECT url, name, reason, raw_text, error_message, retry_count, created_at, updated_at
		FROM failed_parses
		WHERE retry_count > 0
		ORDER BY retry_count ASC`)
	if err != nil {
		return nil, fmt.Errorf("list retryable parses: %w", err)
	}
	return collectFailedParses(rows)
}

// DecrementRetry lowers the retry count by one, floored at zero. A missing
// record is a no-op: the preceding attempt may have resolved and deleted
// it.
func (s *FailureStore) DecrementRetry(ctx context.Context, url string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE failed_parses
		SET retry_count = GREATEST(retry_count - 1, 0)
		WHERE url = $1`, url)
	if err != nil {
		return fmt.Errorf("decrement retry count: %w", err)
	}
	return nil
}

// MarkForRetry sets a record's retry count (the operator action).
func (s *FailureStore) MarkForRetry(ctx context.Context, url string, retries int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE failed_parses SET retry_count = $2 WHERE url = $1`, url, retries)
	if err != nil {
		return fmt.Errorf("mark for retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return crawl.ErrNotFound
	}
	return nil
}

// List returns every failure record, most recently updated first.
func (s *FailureStore) List(ctx context.Context) ([]crawl.FailedParse, error) {
	rows, err := s.db.Query(ctx, `
		SELECT url, name, reason, raw_text, error_message, retry_count, created_at, updated_at
		FROM failed_parses
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list failed parses: %w", err)
	}
	return collectFailedParses(rows)
}

// Count returns the number of failure records.
func (s *FailureStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM failed_parses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count failed parses: %w", err)
	}
	return n, nil
}

func collectFailedParses(rows pgx.Rows) ([]crawl.FailedParse, error) {
	defer rows.Close()
	var records []crawl.FailedParse
	for rows.Next() {
		var rec crawl.FailedParse
		err := rows.Scan(
			&rec.URL,
			&rec.Name,
			&rec.Reason,
			&rec.RawText,
			&rec.ErrorText,
			&rec.RetryCount,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed parse: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
