package listing

import (
	"regexp"
	"time"
)

// Timestamp extraction is best effort: index pages print modification dates
// in a handful of formats, so we try the most specific pattern first and
// fall back towards a bare year. All results are UTC.
var timestampPatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`20\d{2}-\d{2}-\d{2}\s*\d{2}:\d{2}:\d{2}`), "2006-01-02 15:04:05"},
	{regexp.MustCompile(`20\d{2}-\d{2}-\d{2}`), "2006-01-02"},
	{regexp.MustCompile(`\d{1,2}-[A-Za-z]{3}-20\d{2}`), "2-Jan-2006"},
}

var bareYearPattern = regexp.MustCompile(`20\d{2}`)

// LastModified extracts a remote modification instant from a listing row's
// raw text. The boolean is false when no pattern matches. A matched
// substring that fails to parse counts as a non-match, not an error.
func LastModified(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, p := range timestampPatterns {
		m := p.re.FindString(raw)
		if m == "" {
			continue
		}
		if ts, err := time.ParseInLocation(p.layout, normalizeSpace(m), time.UTC); err == nil {
			return ts, true
		}
	}
	if m := bareYearPattern.FindString(raw); m != "" {
		if ts, err := time.ParseInLocation("2006", m, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

var spaceRun = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}
