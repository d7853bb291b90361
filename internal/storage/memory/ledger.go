// Package memory provides in-memory ledger stores for development and
// testing. All three stores mirror the semantics of the Postgres
// implementations, including upsert-by-key and retry-count flooring.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mediadex/internal/crawl"
)

// MediaStore is an in-memory crawl.MediaStore keyed by file URL.
type MediaStore struct {
	mu    sync.RWMutex
	items map[string]crawl.MediaItem
}

// NewMediaStore constructs an empty MediaStore.
func NewMediaStore() *MediaStore {
	return &MediaStore{items: make(map[string]crawl.MediaItem)}
}

// GetOrCreate returns the item for seed.FileURL, inserting seed when no row
// exists yet.
func (s *MediaStore) GetOrCreate(_ context.Context, seed crawl.MediaItem) (crawl.MediaItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[seed.FileURL]; ok {
		return item, false, nil
	}
	s.items[seed.FileURL] = seed
	return seed, true, nil
}

// Update overwrites the stored item.
func (s *MediaStore) Update(_ context.Context, item crawl.MediaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.FileURL] = item
	return nil
}

// Get returns the item for fileURL, or crawl.ErrNotFound.
func (s *MediaStore) Get(_ context.Context, fileURL string) (crawl.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[fileURL]
	if !ok {
		return crawl.MediaItem{}, crawl.ErrNotFound
	}
	return item, nil
}

// ListByStatus returns items with one of the given statuses, ordered by
// title.
func (s *MediaStore) ListByStatus(_ context.Context, statuses ...crawl.MetadataStatus) ([]crawl.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []crawl.MediaItem
	for _, item := range s.items {
		for _, status := range statuses {
			if item.MetadataStatus == status {
				out = append(out, item)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Count returns the number of registry rows.
func (s *MediaStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// DirectoryStore is an in-memory crawl.DirectoryStore keyed by directory
// URL.
type DirectoryStore struct {
	mu     sync.RWMutex
	visits map[string]crawl.DirectoryVisit
}

// NewDirectoryStore constructs an empty DirectoryStore.
func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{visits: make(map[string]crawl.DirectoryVisit)}
}

// Get returns the cached visit for dirURL, or crawl.ErrNotFound.
func (s *DirectoryStore) Get(_ context.Context, dirURL string) (crawl.DirectoryVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visit, ok := s.visits[dirURL]
	if !ok {
		return crawl.DirectoryVisit{}, crawl.ErrNotFound
	}
	return visit, nil
}

// Upsert writes the visit row.
func (s *DirectoryStore) Upsert(_ context.Context, visit crawl.DirectoryVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[visit.URL] = visit
	return nil
}

// FailureStore is an in-memory crawl.FailureStore keyed by source URL.
type FailureStore struct {
	mu      sync.RWMutex
	records map[string]crawl.FailedParse
	now     func() time.Time
}

// NewFailureStore constructs an empty FailureStore.
func NewFailureStore() *FailureStore {
	return &FailureStore{
		records: make(map[string]crawl.FailedParse),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upsert creates or refreshes the record for rec.URL. The retry count of an
// existing record is preserved; it belongs to the operator.
func (s *FailureStore) Upsert(_ context.Context, rec crawl.FailedParse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.records[rec.URL]; ok {
		rec.RetryCount = existing.RetryCount
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.records[rec.URL] = rec
	return nil
}

// Delete removes the record for url, if any.
func (s *FailureStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, url)
	return nil
}

// Get returns the record for url, or crawl.ErrNotFound.
func (s *FailureStore) Get(_ context.Context, url string) (crawl.FailedParse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[url]
	if !ok {
		return crawl.FailedParse{}, crawl.ErrNotFound
	}
	return rec, nil
}

// ListRetryable returns records with retry_count > 0, least-retried first.
func (s *FailureStore) ListRetryable(_ context.Context) ([]crawl.FailedParse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []crawl.FailedParse
	for _, rec := range s.records {
		if rec.RetryCount > 0 {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RetryCount < out[j].RetryCount })
	return out, nil
}

// DecrementRetry lowers the retry count by one, floored at zero. Missing
// records are a no-op: the attempt that preceded the decrement may have
// resolved and deleted them.
func (s *FailureStore) DecrementRetry(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[url]
	if !ok {
		return nil
	}
	if rec.RetryCount > 0 {
		rec.RetryCount--
	}
	s.records[url] = rec
	return nil
}

// MarkForRetry sets the retry count for url.
func (s *FailureStore) MarkForRetry(_ context.Context, url string, retries int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[url]
	if !ok {
		return crawl.ErrNotFound
	}
	rec.RetryCount = retries
	s.records[url] = rec
	return nil
}

// List returns every failure record, most recently updated first.
func (s *FailureStore) List(_ context.Context) ([]crawl.FailedParse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawl.FailedParse, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Count returns the number of failure records.
func (s *FailureStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
