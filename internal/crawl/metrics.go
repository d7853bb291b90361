package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// itemsScanned tracks every entry consumed from the traversal.
	itemsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediadex_items_scanned_total",
		Help: "The total number of traversal entries processed.",
	})
	// itemOutcomes partitions per-entry decisions by outcome.
	itemOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediadex_item_outcomes_total",
		Help: "Per-entry crawl outcomes (new, updated, skipped, failed).",
	}, []string{"outcome"})
	// metadataFetches partitions provider attempts by resulting status.
	metadataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediadex_metadata_fetches_total",
		Help: "Metadata provider attempts partitioned by resulting status.",
	}, []string{"status"})
)

// Outcome labels recorded on the item outcome counter.
const (
	outcomeNew              = "new"
	outcomeUpdated          = "updated"
	outcomeSkippedUnchanged = "skipped_unchanged"
	outcomeSkippedScheduled = "skipped_scheduled"
	outcomeFailedNoMedia    = "failed_no_media"
	outcomeFailedTimeout    = "failed_timeout"
	outcomeFailedError      = "failed_error"
)
