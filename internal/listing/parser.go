// Package listing parses Apache/H5AI-style directory index pages into
// entries and extracts last-modified timestamps from their row text.
package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Entry is a single hyperlink found on a directory index page. Raw carries
// the full text of the row the link was found in, which is where servers
// print the modification date.
type Entry struct {
	Name string
	URL  string
	Raw  string
}

// IsDir reports whether the entry points at a sub-directory. Directory-ness
// is inferred purely from the trailing slash on the resolved URL.
func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.URL, "/")
}

// Parse extracts the entries from one directory index page. The pageURL is
// used to resolve relative hrefs.
//
// Index pages come in many shapes (tables, lists, plain div soup), so the
// scan is two-tier: first look at row-like elements that contain exactly one
// anchor and take the row text as Raw; if that finds nothing, fall back to
// scanning anchors directly and recover Raw from the anchor's parent.
func Parse(pageURL string, body []byte) ([]Entry, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var entries []Entry
	doc.Find("tr, li, div").Each(func(_ int, row *goquery.Selection) {
		anchors := row.Find("a[href]")
		if anchors.Length() != 1 {
			return
		}
		a := anchors.First()
		if e, ok := entryFromAnchor(base, a, rowText(row)); ok {
			entries = append(entries, e)
		}
	})

	if len(entries) > 0 {
		return entries, nil
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		raw := ""
		if parent := a.Parent(); parent.Length() > 0 {
			raw = rowText(parent)
		}
		if e, ok := entryFromAnchor(base, a, raw); ok {
			entries = append(entries, e)
		}
	})
	return entries, nil
}

func entryFromAnchor(base *url.URL, a *goquery.Selection, raw string) (Entry, bool) {
	href, _ := a.Attr("href")
	name := strings.TrimSpace(a.Text())
	if name == "" || isParentLink(name, href) {
		return Entry{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return Entry{}, false
	}
	return Entry{
		Name: name,
		URL:  base.ResolveReference(ref).String(),
		Raw:  raw,
	}, true
}

func isParentLink(name, href string) bool {
	switch name {
	case "..", "../", "Parent Directory":
		return true
	}
	return href == ".." || href == "../"
}

// rowText flattens a row to a single space-separated line, mirroring how a
// browser would render it.
func rowText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
