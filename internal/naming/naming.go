// Package naming derives a search-friendly title and year from media file
// and directory names. The heuristics are intentionally lossy: the output
// feeds a metadata search query, not a canonical catalogue.
package naming

import (
	"regexp"
	"strings"
)

// MediaExtensions is the fixed set of file extensions treated as media.
var MediaExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov", ".webm", ".m4v", ".wmv", ".flv", ".ts", ".m2ts",
}

var (
	titleYearPattern = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)`)
	bareYearPattern  = regexp.MustCompile(`\d{4}`)
	junkPattern      = regexp.MustCompile(`\b\d{3,4}p\b|\[[^\]]*\]|\([^)]*\)`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// IsMediaFile reports whether name carries one of the known media
// extensions, case-insensitively.
func IsMediaFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range MediaExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// TrimMediaExtension removes a known media extension suffix, if present.
func TrimMediaExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range MediaExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// ParseTitleYear extracts a title and the raw year token from a file or
// directory name. The well-formed "Title (2010)" shape wins; otherwise the
// first bare four-digit number anywhere is taken as the year (empty string
// if none) and the title is derived from whatever precedes it, with
// bracketed groups, parenthesised groups, resolution tags and separator
// punctuation stripped. Release names like "Amelie.2001.mkv" therefore
// come out as ("Amelie", "2001").
func ParseTitleYear(name string) (title, yearRaw string) {
	name = TrimMediaExtension(name)

	if m := titleYearPattern.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}

	base := name
	if loc := bareYearPattern.FindStringIndex(name); loc != nil {
		yearRaw = name[loc[0]:loc[1]]
		if loc[0] > 0 {
			base = name[:loc[0]]
		}
	}
	title = junkPattern.ReplaceAllString(base, "")
	title = strings.Map(func(r rune) rune {
		if r == '.' || r == '_' {
			return ' '
		}
		return r
	}, title)
	title = strings.TrimSpace(spacePattern.ReplaceAllString(title, " "))
	return title, yearRaw
}

// CleanForSearch strips release-name noise (bracket groups, resolution
// tags, parenthesised groups) so the remainder works as a search query.
func CleanForSearch(raw string) string {
	t := junkPattern.ReplaceAllString(raw, "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(t, " "))
}
