package crawl

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mediadex/internal/fetch"
	"mediadex/internal/listing"
	"mediadex/internal/naming"
)

// Options tune a single orchestrator run.
type Options struct {
	// Force re-fetches metadata even for directories and items whose
	// remote timestamps are unchanged.
	Force bool
}

// Orchestrator consumes traversal entries, applies the ledger's skip
// decisions, invokes the metadata fetch policy and keeps the three ledger
// stores consistent. One orchestrator drives one run.
type Orchestrator struct {
	media    MediaStore
	dirs     DirectoryStore
	failures FailureStore
	provider MetadataProvider
	list     ListFunc
	clock    Clock
	logger   *zap.Logger
	opts     Options
	stats    Stats
}

// NewOrchestrator wires the crawl engine together. All collaborators are
// injected so tests can substitute fakes.
func NewOrchestrator(
	media MediaStore,
	dirs DirectoryStore,
	failures FailureStore,
	provider MetadataProvider,
	list ListFunc,
	clock Clock,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		media:    media,
		dirs:     dirs,
		failures: failures,
		provider: provider,
		list:     list,
		clock:    clock,
		logger:   logger,
		opts:     opts,
	}
}

// Stats returns the counters accumulated so far.
func (o *Orchestrator) Stats() Stats {
	return o.stats
}

// Run drains the traversal, processing each entry in turn. Per-entry
// failures are persisted and never abort the run; the accumulated stats are
// returned even when ctx is canceled mid-stream or an entry panics.
func (o *Orchestrator) Run(ctx context.Context, t *Traversal) (stats Stats) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("crawl run panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
			stats = o.stats
		}
	}()

	lastProgress := 0
	for {
		entry, ok := t.Next(ctx)
		if !ok {
			break
		}
		o.stats.Scanned++
		itemsScanned.Inc()

		if o.stats.Scanned-lastProgress >= 100 {
			lastProgress = o.stats.Scanned
			o.logger.Info("crawl progress",
				zap.Int("scanned", o.stats.Scanned),
				zap.Int("new", o.stats.NewItems),
				zap.Int("skipped_unchanged", o.stats.SkippedUnchanged))
		}

		o.Process(ctx, entry)
	}
	return o.stats
}

// Process applies the per-entry decision logic. Directory entries go
// through the directory path, media files listed directly go through the
// file path, anything else is ignored.
func (o *Orchestrator) Process(ctx context.Context, entry Entry) {
	switch {
	case entry.IsDir:
		o.processDirectory(ctx, entry)
	case naming.IsMediaFile(entry.Name):
		o.processFile(ctx, entry)
	}
}

// processDirectory resolves one directory entry: skip-check against the
// visit cache, locate the directory's media listing, reconcile the media
// registry, and stamp the cache once the directory is resolved. A metadata
// fetch failure does not block the directory from being marked resolved;
// rediscovery is cheap, metadata retries are gated by NextCrawl.
func (o *Orchestrator) processDirectory(ctx context.Context, entry Entry) {
	remoteMod := observedModified(entry.Raw)

	if o.shouldSkipDirectory(ctx, entry.URL, remoteMod) {
		o.stats.SkippedUnchanged++
		itemOutcomes.WithLabelValues(outcomeSkippedUnchanged).Inc()
		o.logger.Debug("directory unchanged", zap.String("url", entry.URL))
		return
	}

	media, err := o.findMedia(ctx, entry.URL)
	if err != nil {
		reason := ReasonNetworkError
		if fetch.IsTimeout(err) {
			reason = ReasonTimeout
			o.stats.FailedTimeout++
			itemOutcomes.WithLabelValues(outcomeFailedTimeout).Inc()
		} else {
			o.stats.FailedError++
			itemOutcomes.WithLabelValues(outcomeFailedError).Inc()
		}
		o.recordFailure(ctx, entry, reason, err.Error())
		o.logger.Warn("directory listing failed",
			zap.String("url", entry.URL),
			zap.String("reason", string(reason)),
			zap.Error(err))
		return
	}
	if len(media) == 0 {
		o.stats.FailedNoMedia++
		itemOutcomes.WithLabelValues(outcomeFailedNoMedia).Inc()
		o.recordFailure(ctx, entry, ReasonNoMedia, "")
		o.logger.Debug("no media in directory", zap.String("url", entry.URL))
		return
	}

	// Multi-file directories collapse to their first media file. Known
	// simplification: the file URL is the registry key, so one row per
	// directory keeps the uniqueness invariant intact.
	first := media[0]

	title, yearRaw := naming.ParseTitleYear(entry.Name)
	dirURL := entry.URL
	seed := MediaItem{
		FileURL:        first.URL,
		Title:          title,
		Year:           parseYear(yearRaw),
		YearRaw:        yearRaw,
		DirectoryURL:   &dirURL,
		MetadataStatus: StatusMissing,
	}
	item, created, err := o.media.GetOrCreate(ctx, seed)
	if err != nil {
		o.stats.FailedError++
		itemOutcomes.WithLabelValues(outcomeFailedError).Inc()
		o.logger.Error("media registry lookup failed",
			zap.String("url", first.URL), zap.Error(err))
		return
	}

	if o.isScheduledOut(item) {
		o.stats.SkippedScheduled++
		itemOutcomes.WithLabelValues(outcomeSkippedScheduled).Inc()
		o.logger.Debug("item scheduled for later", zap.String("title", item.Title))
		return
	}
	if o.isUnchanged(item, created, remoteMod) {
		o.stats.SkippedUnchanged++
		itemOutcomes.WithLabelValues(outcomeSkippedUnchanged).Inc()
		o.logger.Debug("item unchanged", zap.String("title", item.Title))
		return
	}

	if err := o.fetchMetadata(ctx, item, remoteMod, created); err != nil {
		o.logger.Error("media registry write failed",
			zap.String("url", item.FileURL), zap.Error(err))
	}

	// The directory is resolved regardless of the metadata outcome above.
	visit := DirectoryVisit{
		URL:            entry.URL,
		RemoteModified: remoteMod,
		LastCrawled:    o.clock.Now().UTC(),
		MediaCount:     len(media),
	}
	if err := o.dirs.Upsert(ctx, visit); err != nil {
		o.logger.Error("directory cache write failed",
			zap.String("url", entry.URL), zap.Error(err))
	}
	if err := o.failures.Delete(ctx, entry.URL); err != nil {
		o.logger.Error("failure ledger delete failed",
			zap.String("url", entry.URL), zap.Error(err))
	}
}

// processFile handles a media file listed outside any folder. No directory
// cache interaction happens on this path.
func (o *Orchestrator) processFile(ctx context.Context, entry Entry) {
	remoteMod := observedModified(entry.Raw)
	title, yearRaw := naming.ParseTitleYear(entry.Name)

	seed := MediaItem{
		FileURL:        entry.URL,
		Title:          title,
		Year:           parseYear(yearRaw),
		YearRaw:        yearRaw,
		MetadataStatus: StatusMissing,
	}
	item, created, err := o.media.GetOrCreate(ctx, seed)
	if err != nil {
		o.stats.FailedError++
		itemOutcomes.WithLabelValues(outcomeFailedError).Inc()
		o.logger.Error("media registry lookup failed",
			zap.String("url", entry.URL), zap.Error(err))
		return
	}

	if o.isScheduledOut(item) {
		o.stats.SkippedScheduled++
		itemOutcomes.WithLabelValues(outcomeSkippedScheduled).Inc()
		return
	}
	if o.isUnchanged(item, created, remoteMod) {
		o.stats.SkippedUnchanged++
		itemOutcomes.WithLabelValues(outcomeSkippedUnchanged).Inc()
		return
	}

	o.stats.DirectFiles++
	if err := o.fetchMetadata(ctx, item, remoteMod, created); err != nil {
		o.logger.Error("media registry write failed",
			zap.String("url", item.FileURL), zap.Error(err))
	}
}

// shouldSkipDirectory implements the monotonic skip: a cached
// remote-modified at least as new as the observed one means nothing below
// the directory changed. The cache is only written after a full successful
// scan, so the cached value never regresses.
func (o *Orchestrator) shouldSkipDirectory(ctx context.Context, dirURL string, observed *time.Time) bool {
	if o.opts.Force || observed == nil {
		return false
	}
	cached, err := o.dirs.Get(ctx, dirURL)
	if err != nil {
		return false
	}
	return cached.RemoteModified != nil && !observed.After(*cached.RemoteModified)
}

// isScheduledOut reports whether the item's NextCrawl gate is still in the
// future.
func (o *Orchestrator) isScheduledOut(item MediaItem) bool {
	return item.NextCrawl != nil && item.NextCrawl.After(o.clock.Now())
}

// isUnchanged reports whether a fetch can be skipped: the item is neither
// new nor stale and its metadata was already fetched.
func (o *Orchestrator) isUnchanged(item MediaItem, created bool, observed *time.Time) bool {
	if o.opts.Force || created || !item.Fetched {
		return false
	}
	stale := observed != nil &&
		(item.RemoteModified == nil || observed.After(*item.RemoteModified))
	return !stale
}

// findMedia fetches the directory's own listing and filters it down to
// media files.
func (o *Orchestrator) findMedia(ctx context.Context, dirURL string) ([]Entry, error) {
	entries, err := o.list(ctx, dirURL)
	if err != nil {
		return nil, err
	}
	var media []Entry
	for _, e := range entries {
		if !e.IsDir() && naming.IsMediaFile(e.Name) {
			media = append(media, Entry{Name: e.Name, URL: e.URL, Raw: e.Raw})
		}
	}
	return media, nil
}

func (o *Orchestrator) recordFailure(ctx context.Context, entry Entry, reason FailureReason, errText string) {
	rec := NewFailedParse(entry.URL, entry.Name, reason, entry.Raw, errText)
	if err := o.failures.Upsert(ctx, rec); err != nil {
		o.logger.Error("failure ledger write failed",
			zap.String("url", entry.URL), zap.Error(err))
	}
}

func observedModified(raw string) *time.Time {
	if ts, ok := listing.LastModified(raw); ok {
		return &ts
	}
	return nil
}

func parseYear(yearRaw string) *int {
	if yearRaw == "" {
		return nil
	}
	y, err := strconv.Atoi(yearRaw)
	if err != nil {
		return nil
	}
	return &y
}
