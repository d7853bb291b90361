package crawl

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mediadex/internal/fetch"
)

// fetchMetadata runs one provider attempt for item and writes the outcome
// back to the media registry. Every outcome is a full, idempotent write:
//
//   - ok: provider fields merged (non-nil values only), Fetched set,
//     NextCrawl cleared;
//   - missing: provider had no answer, retry gated one hour out;
//   - failed: provider call errored (timeouts included), retry gated six
//     hours out.
//
// There is no per-item retry counter; NextCrawl is the single-shot gate, so
// a permanently missing title keeps being retried at the fixed cadence.
func (o *Orchestrator) fetchMetadata(ctx context.Context, item MediaItem, remoteMod *time.Time, isNew bool) error {
	now := o.clock.Now().UTC()
	item.LastCrawled = &now

	meta, err := o.provider.Lookup(ctx, item.Title, item.YearRaw)
	switch {
	case err != nil:
		item.MetadataStatus = StatusFailed
		next := now.Add(FailedRetryDelay)
		item.NextCrawl = &next
		if fetch.IsTimeout(err) {
			o.stats.FailedTimeout++
			metadataFetches.WithLabelValues(string(StatusFailed)).Inc()
			itemOutcomes.WithLabelValues(outcomeFailedTimeout).Inc()
		} else {
			o.stats.FailedError++
			metadataFetches.WithLabelValues(string(StatusFailed)).Inc()
			itemOutcomes.WithLabelValues(outcomeFailedError).Inc()
		}
		o.logger.Warn("metadata fetch failed",
			zap.String("title", item.Title), zap.Error(err))

	case meta == nil:
		item.MetadataStatus = StatusMissing
		next := now.Add(MissingRetryDelay)
		item.NextCrawl = &next
		if remoteMod != nil {
			item.RemoteModified = remoteMod
		}
		if isNew {
			o.stats.NewItems++
			itemOutcomes.WithLabelValues(outcomeNew).Inc()
		}
		metadataFetches.WithLabelValues(string(StatusMissing)).Inc()
		o.logger.Info("metadata missing", zap.String("title", item.Title))

	default:
		mergeMetadata(&item, meta)
		item.Fetched = true
		item.MetadataStatus = StatusOK
		item.NextCrawl = nil
		if remoteMod != nil {
			item.RemoteModified = remoteMod
		}
		o.stats.MetadataFetched++
		metadataFetches.WithLabelValues(string(StatusOK)).Inc()
		if isNew {
			o.stats.NewItems++
			itemOutcomes.WithLabelValues(outcomeNew).Inc()
		} else {
			o.stats.UpdatedItems++
			itemOutcomes.WithLabelValues(outcomeUpdated).Inc()
		}
		o.logger.Info("metadata fetched", zap.String("title", item.Title))
	}

	return o.media.Update(ctx, item)
}

// mergeMetadata copies provider fields onto the item; nil provider values
// never clobber previously stored ones.
func mergeMetadata(item *MediaItem, meta *Metadata) {
	if meta.PosterURL != nil {
		item.PosterURL = meta.PosterURL
	}
	if meta.Popularity != nil {
		item.Popularity = meta.Popularity
	}
	if meta.VoteCount != nil {
		item.VoteCount = meta.VoteCount
	}
	if meta.VoteAverage != nil {
		item.VoteAverage = meta.VoteAverage
	}
	if meta.TMDBID != nil {
		item.TMDBID = meta.TMDBID
	}
}
