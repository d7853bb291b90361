package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mediadex/internal/crawl"
)

// newFailuresCmd creates the 'failures' subcommand: inspection of the
// failed-parse ledger and the operator action that schedules retries.
func newFailuresCmd() *cobra.Command {
	var (
		markRetry string
		retries   int
	)

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Inspect the failure ledger or mark entries for retry",
		Long: `Without flags, lists every directory the crawler could not resolve.
With --mark-retry, sets the retry budget for one failure so the next
'crawl --retry-failed' run revisits it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if markRetry != "" {
				return runMarkRetry(cmd, markRetry, retries)
			}
			return runListFailures(cmd)
		},
	}

	cmd.Flags().StringVar(&markRetry, "mark-retry", "", "URL of the failure to schedule for retry")
	cmd.Flags().IntVar(&retries, "retries", 3, "retry budget to assign with --mark-retry")
	return cmd
}

func runListFailures(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	_, _, failures, closeStores, err := buildStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeStores()

	recs, err := failures.List(ctx)
	if err != nil {
		return fmt.Errorf("list failures: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "Failure ledger is empty.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tREASON\tRETRIES\tLAST SEEN\tERROR")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			rec.URL, rec.Reason, rec.RetryCount,
			rec.UpdatedAt.Format("2006-01-02 15:04"), rec.ErrorText)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush failures: %w", err)
	}
	return nil
}

func runMarkRetry(cmd *cobra.Command, url string, retries int) error {
	if retries <= 0 {
		return errors.New("--retries must be > 0")
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	_, _, failures, closeStores, err := buildStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeStores()

	if err := failures.MarkForRetry(ctx, url, retries); err != nil {
		if errors.Is(err, crawl.ErrNotFound) {
			return fmt.Errorf("no failure recorded for %s", url)
		}
		return fmt.Errorf("mark for retry: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Marked %s for %d retries.\n", url, retries)
	return nil
}
