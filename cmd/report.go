package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mediadex/internal/crawl"
)

// newReportCmd creates the 'report' subcommand: a listing of items whose
// metadata is still missing or whose last fetch failed.
func newReportCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List media items without metadata",
		Long: `Lists ledger items whose metadata enrichment has not succeeded yet,
either because the provider had no match (missing) or because the last
attempt errored (failed).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := reportStatuses(status)
			if err != nil {
				return err
			}
			return runReport(cmd, statuses)
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "filter: missing, failed, or all")
	return cmd
}

func reportStatuses(filter string) ([]crawl.MetadataStatus, error) {
	switch filter {
	case "missing":
		return []crawl.MetadataStatus{crawl.StatusMissing}, nil
	case "failed":
		return []crawl.MetadataStatus{crawl.StatusFailed}, nil
	case "all":
		return []crawl.MetadataStatus{crawl.StatusMissing, crawl.StatusFailed}, nil
	default:
		return nil, fmt.Errorf("unknown status filter %q", filter)
	}
}

func runReport(cmd *cobra.Command, statuses []crawl.MetadataStatus) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	media, _, _, closeStores, err := buildStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeStores()

	items, err := media.ListByStatus(ctx, statuses...)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "All items have metadata.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tYEAR\tSTATUS\tNEXT ATTEMPT\tURL")
	for _, item := range items {
		year := "-"
		if item.Year != nil {
			year = fmt.Sprintf("%d", *item.Year)
		}
		next := "-"
		if item.NextCrawl != nil {
			next = item.NextCrawl.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.Title, year, item.MetadataStatus, next, item.FileURL)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	fmt.Fprintf(out, "\n%d items without metadata.\n", len(items))
	return nil
}
