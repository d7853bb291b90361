package crawl

// Stats aggregates per-run outcome counters for the caller to report.
type Stats struct {
	Scanned          int
	NewItems         int
	UpdatedItems     int
	MetadataFetched  int
	DirectFiles      int
	SkippedUnchanged int
	SkippedScheduled int
	FailedNoMedia    int
	FailedTimeout    int
	FailedError      int
}

// Changed reports whether the run produced any new or updated items.
func (s Stats) Changed() bool {
	return s.NewItems > 0 || s.UpdatedItems > 0
}
