package crawl

import (
	"context"
	"errors"
	"time"

	"mediadex/internal/listing"
)

// ErrNotFound is returned by ledger stores when no row exists for a key.
var ErrNotFound = errors.New("not found")

// MediaStore persists the media registry, keyed by file URL.
type MediaStore interface {
	// GetOrCreate returns the item for seed.FileURL, creating it from seed
	// when absent. The boolean reports whether a row was created.
	GetOrCreate(ctx context.Context, seed MediaItem) (MediaItem, bool, error)
	// Update writes the full item state. The write is an idempotent upsert
	// on the file URL.
	Update(ctx context.Context, item MediaItem) error
	// ListByStatus returns items whose metadata status is one of the given
	// values, ordered by title.
	ListByStatus(ctx context.Context, statuses ...MetadataStatus) ([]MediaItem, error)
	Count(ctx context.Context) (int, error)
}

// DirectoryStore persists the directory-visit cache, keyed by directory URL.
type DirectoryStore interface {
	Get(ctx context.Context, dirURL string) (DirectoryVisit, error)
	Upsert(ctx context.Context, visit DirectoryVisit) error
}

// FailureStore persists the failed-parse ledger, keyed by source URL.
type FailureStore interface {
	Upsert(ctx context.Context, rec FailedParse) error
	Delete(ctx context.Context, url string) error
	// ListRetryable returns records with retry_count > 0, least-retried
	// first.
	ListRetryable(ctx context.Context) ([]FailedParse, error)
	// DecrementRetry lowers a record's retry count by one, floored at zero.
	DecrementRetry(ctx context.Context, url string) error
	// MarkForRetry sets a record's retry count (the operator action).
	MarkForRetry(ctx context.Context, url string, retries int) error
	List(ctx context.Context) ([]FailedParse, error)
	Count(ctx context.Context) (int, error)
}

// MetadataProvider resolves a title/year to metadata fields. A nil result
// with a nil error means the provider had no answer ("missing"); an error
// means the attempt failed and should be retried on the failed backoff
// tier.
type MetadataProvider interface {
	Lookup(ctx context.Context, title, yearRaw string) (*Metadata, error)
}

// ListFunc fetches and parses one directory-listing page. The typed result
// keeps the traversal's skip-on-error policy explicit and testable.
type ListFunc func(ctx context.Context, dirURL string) ([]listing.Entry, error)

// Clock supplies the current time so scheduling decisions are testable.
type Clock interface {
	Now() time.Time
}
