package listing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const apacheIndex = `<html><body>
<table>
<tr><th>Name</th><th>Last modified</th><th>Size</th></tr>
<tr><td><a href="../">Parent Directory</a></td><td></td><td>-</td></tr>
<tr><td><a href="Inception%20(2010)/">Inception (2010)</a></td><td>2024-03-10 14:22:05</td><td>-</td></tr>
<tr><td><a href="Amelie.2001.mkv">Amelie.2001.mkv</a></td><td>2024-01-05 09:00:00</td><td>1.4G</td></tr>
</table>
</body></html>`

const plainAnchorIndex = `<html><body>
<a href="..">..</a>
<a href="movies/">movies/</a> 2024-03-10
<a href="notes.txt">notes.txt</a> 2023-12-01
</body></html>`

func TestParseTableListing(t *testing.T) {
	entries, err := Parse("http://files.example.com/media/", []byte(apacheIndex))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "Inception (2010)", entries[0].Name)
	require.Equal(t, "http://files.example.com/media/Inception%20(2010)/", entries[0].URL)
	require.True(t, entries[0].IsDir())
	require.Contains(t, entries[0].Raw, "2024-03-10 14:22:05")

	require.Equal(t, "Amelie.2001.mkv", entries[1].Name)
	require.Equal(t, "http://files.example.com/media/Amelie.2001.mkv", entries[1].URL)
	require.False(t, entries[1].IsDir())
}

func TestParseAnchorFallback(t *testing.T) {
	entries, err := Parse("http://files.example.com/", []byte(plainAnchorIndex))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "movies/", entries[0].Name)
	require.True(t, entries[0].IsDir())
	require.Equal(t, "notes.txt", entries[1].Name)
}

func TestParseSkipsParentLinks(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "dotdot href", html: `<div><a href="..">..</a></div>`},
		{name: "dotdot slash", html: `<div><a href="../">../</a></div>`},
		{name: "apache label", html: `<div><a href="/media/">Parent Directory</a></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Parse("http://files.example.com/media/sub/", []byte(tt.html))
			require.NoError(t, err)
			require.Empty(t, entries)
		})
	}
}

func TestParseResolvesRelativeAndAbsoluteHrefs(t *testing.T) {
	html := `<ul>
<li><a href="/media/other/">other</a></li>
<li><a href="local.mkv">local.mkv</a></li>
</ul>`
	entries, err := Parse("http://files.example.com/media/sub/", []byte(html))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "http://files.example.com/media/other/", entries[0].URL)
	require.Equal(t, "http://files.example.com/media/sub/local.mkv", entries[1].URL)
}

func TestParseEmptyPage(t *testing.T) {
	entries, err := Parse("http://files.example.com/", []byte("<html><body></body></html>"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestParseBadPageURL(t *testing.T) {
	_, err := Parse("http://bad url with spaces/", []byte("<html></html>"))
	require.Error(t, err)
}
