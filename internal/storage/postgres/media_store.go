package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mediadex/internal/crawl"
)

// MediaStore implements crawl.MediaStore on Postgres.
type MediaStore struct {
	db Querier
}

// NewMediaStore constructs a MediaStore on the given pool.
func NewMediaStore(db Querier) *MediaStore {
	return &MediaStore{db: db}
}

const mediaColumns = `file_url, title, year, year_raw, directory_url, poster_url,
	popularity, vote_count, vote_average, tmdb_id, fetched, metadata_status,
	last_crawled, remote_modified, next_crawl`

// GetOrCreate inserts the seed row unless one already exists for its file
// URL, then returns the stored row. The created flag reports whether the
// insert won; concurrent crawlers racing on the same URL both end up
// reading the surviving row.
func (s *MediaStore) GetOrCreate(ctx context.Context, seed crawl.MediaItem) (crawl.MediaItem, bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO media_items (file_url, title, year, year_raw, directory_url, metadata_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (file_url) DO NOTHING`,
		seed.FileURL, seed.Title, seed.Year, seed.YearRaw, seed.DirectoryURL, seed.MetadataStatus,
	)
	if err != nil {
		return crawl.MediaItem{}, false, fmt.Errorf("insert media item: %w", err)
	}
	created := tag.RowsAffected() == 1

	item, err := s.Get(ctx, seed.FileURL)
	if err != nil {
		return crawl.MediaItem{}, false, err
	}
	return item, created, nil
}

// Get returns the row for fileURL, or crawl.ErrNotFound.
func (s *MediaStore) Get(ctx context.Context, fileURL string) (crawl.MediaItem, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+mediaColumns+`
		FROM media_items
		WHERE file_url = $1`, fileURL)
	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crawl.MediaItem{}, crawl.ErrNotFound
		}
		return crawl.MediaItem{}, fmt.Errorf("get media item: %w", err)
	}
	return item, nil
}

// Update writes the full item state as an idempotent upsert on the file
// URL.
func (s *MediaStore) Update(ctx context.Context, item crawl.MediaItem) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO media_items (`+mediaColumns+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		ON CONFLICT (file_url) DO UPDATE SET
			title = EXCLUDED.title,
			year = EXCLUDED.year,
			year_raw = EXCLUDED.year_raw,
			directory_url = EXCLUDED.directory_url,
			poster_url = EXCLUDED.poster_url,
			popularity = EXCLUDED.popularity,
			vote_count = EXCLUDED.vote_count,
			vote_average = EXCLUDED.vote_average,
			tmdb_id = EXCLUDED.tmdb_id,
			fetched = EXCLUDED.fetched,
			metadata_status = EXCLUDED.metadata_status,
			last_crawled = EXCLUDED.last_crawled,
			remote_modified = EXCLUDED.remote_modified,
			next_crawl = EXCLUDED.next_crawl,
			updated_at = NOW()`,
		item.FileURL, item.Title, item.Year, item.YearRaw, item.DirectoryURL,
		item.PosterURL, item.Popularity, item.VoteCount, item.VoteAverage,
		item.TMDBID, item.Fetched, item.MetadataStatus,
		item.LastCrawled, item.RemoteModified, item.NextCrawl,
	)
	if err != nil {
		return fmt.Errorf("update media item: %w", err)
	}
	return nil
}

// ListByStatus returns items whose metadata status is one of the given
// values, ordered by title.
func (s *MediaStore) ListByStatus(ctx context.Context, statuses ...crawl.MetadataStatus) ([]crawl.MediaItem, error) {
	values := make([]string, len(statuses))
	for i, st := range statuses {
		values[i] = string(st)
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+mediaColumns+`
		FROM media_items
		WHERE metadata_status = ANY($1)
		ORDER BY title`, values)
	if err != nil {
		return nil, fmt.Errorf("list media items: %w", err)
	}
	defer rows.Close()

	var items []crawl.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Count returns the number of registry rows.
func (s *MediaStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM media_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count media items: %w", err)
	}
	return n, nil
}

func scanMediaItem(row pgx.Row) (crawl.MediaItem, error) {
	var item crawl.MediaItem
	err := row.Scan(
		&item.FileURL,
		&item.Title,
		&item.Year,
		&item.YearRaw,
		&item.DirectoryURL,
		&item.PosterURL,
		&item.Popularity,
		&item.VoteCount,
		&item.VoteAverage,
		&item.TMDBID,
		&item.Fetched,
		&item.MetadataStatus,
		&item.LastCrawled,
		&item.RemoteModified,
		&item.NextCrawl,
	)
	return item, err
}
