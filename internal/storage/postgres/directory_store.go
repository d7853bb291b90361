package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mediadex/internal/crawl"
)

// DirectoryStore implements crawl.DirectoryStore on Postgres.
type DirectoryStore struct {
	db Querier
}

// NewDirectoryStore constructs a DirectoryStore on the given pool.
func NewDirectoryStore(db Querier) *DirectoryStore {
	return &DirectoryStore{db: db}
}

// Get returns the cached visit for dirURL, or crawl.ErrNotFound.
func (s *DirectoryStore) Get(ctx context.Context, dirURL string) (crawl.DirectoryVisit, error) {
	var visit crawl.DirectoryVisit
	err := s.db.QueryRow(ctx, `
		SELECT url, remote_modified, last_crawled, media_count
		FROM directory_visits
		WHERE url = $1`, dirURL).
		Scan(&visit.URL, &visit.RemoteModified, &visit.LastCrawled, &visit.MediaCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crawl.DirectoryVisit{}, crawl.ErrNotFound
		}
		return crawl.DirectoryVisit{}, fmt.Errorf("get directory visit: %w", err)
	}
	return visit, nil
}

// Upsert writes the visit row, keyed by directory URL.
func (s *DirectoryStore) Upsert(ctx context.Context, visit crawl.DirectoryVisit) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO directory_visits (url, remote_modified, last_crawled, media_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO UPDATE SET
			remote_modified = EXCLUDED.remote_modified,
			last_crawled = EXCLUDED.last_crawled,
			media_count = EXCLUDED.media_count`,
		visit.URL, visit.RemoteModified, visit.LastCrawled, visit.MediaCount,
	)
	if err != nil {
		return fmt.Errorf("upsert directory visit: %w", err)
	}
	return nil
}
