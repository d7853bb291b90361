package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrawlRequiresURL(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"crawl"})

	require.ErrorContains(t, root.Execute(), "--url is required")
}

func TestCrawlRetryFailedAloneStillPrintsSummary(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"crawl", "--retry-failed", "--dry-run"})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "Scanned 0 entries")
	require.Contains(t, out.String(), "No new or updated media found.")
}
