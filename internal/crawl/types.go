// Package crawl implements the incremental crawl-and-reconcile engine: the
// breadth-first traversal of a directory-listing tree, the persisted crawl
// ledger and its skip decisions, the metadata fetch policy with its backoff
// tiers, and the retry driver for previously failed directories.
package crawl

import "time"

// MetadataStatus is the per-item state of the metadata enrichment machine.
type MetadataStatus string

// Metadata status values persisted on a media item.
const (
	StatusMissing MetadataStatus = "missing"
	StatusOK      MetadataStatus = "ok"
	StatusFailed  MetadataStatus = "failed"
)

// FailureReason classifies why a directory could not be resolved.
type FailureReason string

// Failure reasons persisted in the failed-parse ledger. ReasonParseError
// and ReasonUnknown are reserved; no current path records them.
const (
	ReasonNoMedia      FailureReason = "no_media"
	ReasonParseError   FailureReason = "parse_error"
	ReasonTimeout      FailureReason = "timeout"
	ReasonNetworkError FailureReason = "network_error"
	ReasonUnknown      FailureReason = "unknown"
)

// Backoff tiers applied by the metadata fetch policy before an item becomes
// eligible for another attempt.
const (
	MissingRetryDelay = time.Hour
	FailedRetryDelay  = 6 * time.Hour
)

// Bounds on the text persisted with a failure record.
const (
	maxFailureRawLen   = 1000
	maxFailureErrorLen = 500
)

// Entry is one item produced by the traversal: a directory or file link
// found on a listing page, plus the raw row text it was printed with.
type Entry struct {
	Name  string
	URL   string
	IsDir bool
	Raw   string
}

// MediaItem is a media registry row. FileURL is the sole natural key: two
// sightings with the same file URL are the same item.
type MediaItem struct {
	FileURL        string
	Title          string
	Year           *int
	YearRaw        string
	DirectoryURL   *string
	PosterURL      *string
	Popularity     *float64
	VoteCount      *int
	VoteAverage    *float64
	TMDBID         *int
	Fetched        bool
	MetadataStatus MetadataStatus
	LastCrawled    *time.Time
	RemoteModified *time.Time
	NextCrawl      *time.Time
}

// DirectoryVisit caches the newest remote-modified instant observed for a
// directory's listing entry. Written only after a full, successful scan, so
// the cached value never regresses.
type DirectoryVisit struct {
	URL            string
	RemoteModified *time.Time
	LastCrawled    time.Time
	MediaCount     int
}

// FailedParse records a directory (or file) that could not be resolved.
// One record per URL; RetryCount is operator-controlled and decremented by
// the retry driver down to zero.
type FailedParse struct {
	URL        string
	Name       string
	Reason     FailureReason
	RawText    string
	ErrorText  string
	RetryCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewFailedParse builds a failure record with its text fields bounded.
func NewFailedParse(url, name string, reason FailureReason, raw, errText string) FailedParse {
	return FailedParse{
		URL:       url,
		Name:      name,
		Reason:    reason,
		RawText:   truncate(raw, maxFailureRawLen),
		ErrorText: truncate(errText, maxFailureErrorLen),
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// Metadata is the provider's answer for one title/year lookup. All fields
// are optional; nil values never overwrite previously stored ones.
type Metadata struct {
	PosterURL   *string
	Popularity  *float64
	VoteCount   *int
	VoteAverage *float64
	TMDBID      *int
}
