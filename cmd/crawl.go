package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mediadex/internal/api"
	"mediadex/internal/clock/system"
	"mediadex/internal/config"
	"mediadex/internal/crawl"
	"mediadex/internal/fetch"
	"mediadex/internal/listing"
	"mediadex/internal/metadata"
	"mediadex/internal/metadata/omdb"
	"mediadex/internal/metadata/tmdb"
	"mediadex/internal/storage/memory"
	"mediadex/internal/storage/postgres"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	var (
		rootURL     string
		force       bool
		retryFailed bool
		maxItems    int
		timeoutSec  int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Walk a directory listing and reconcile the media ledger",
		Long: `Walks the directory tree rooted at --url breadth-first, records every
media file found, and fetches metadata for items that are due. With
--retry-failed the run first revisits directories from the failure ledger
that an operator has marked for retry, then continues into the crawl when
--url is also given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !retryFailed && rootURL == "" {
				return errors.New("--url is required unless --retry-failed is set")
			}
			return runCrawl(cmd, crawlFlags{
				rootURL:     rootURL,
				force:       force,
				retryFailed: retryFailed,
				maxItems:    maxItems,
				timeoutSec:  timeoutSec,
				dryRun:      dryRun,
			})
		},
	}

	cmd.Flags().StringVar(&rootURL, "url", "", "root directory-listing URL to crawl")
	cmd.Flags().BoolVar(&force, "force", false, "re-fetch metadata even for unchanged items")
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "revisit failures marked for retry before the crawl")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "stop after this many entries (0 = unlimited)")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "per-request timeout in seconds (0 = config value)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use an in-memory ledger instead of the database")

	return cmd
}

type crawlFlags struct {
	rootURL     string
	force       bool
	retryFailed bool
	maxItems    int
	timeoutSec  int
	dryRun      bool
}

func runCrawl(cmd *cobra.Command, flags crawlFlags) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if flags.timeoutSec > 0 {
		cfg.Crawl.TimeoutSeconds = flags.timeoutSec
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	media, dirs, failures, closeStores, err := buildStores(ctx, cfg, flags.dryRun)
	if err != nil {
		return err
	}
	defer closeStores()

	client := fetch.NewClient(fetch.Config{
		UserAgent:      cfg.Crawl.UserAgent,
		RequestTimeout: cfg.RequestTimeout(),
	}, logger)

	list := crawl.ListFunc(func(ctx context.Context, dirURL string) ([]listing.Entry, error) {
		body, err := client.Get(ctx, dirURL)
		if err != nil {
			return nil, err
		}
		return listing.Parse(dirURL, body)
	})

	provider := buildProvider(cfg, logger)

	orch := crawl.NewOrchestrator(media, dirs, failures, provider, list, system.New(), logger, crawl.Options{
		Force: flags.force,
	})

	if cfg.Metrics.Addr != "" {
		shutdown := startMetricsServer(cfg.Metrics.Addr, logger)
		defer shutdown()
	}

	if flags.retryFailed {
		logger.Info("retrying failed directories")
		if err := orch.RetryFailures(ctx); err != nil {
			printSummary(ctx, cmd, orch.Stats(), failures)
			return fmt.Errorf("retry failures: %w", err)
		}
	}

	// The retry pass and the crawl share one orchestrator, so both feed the
	// same summary.
	if flags.rootURL != "" {
		maxItems := flags.maxItems
		if maxItems == 0 {
			maxItems = cfg.Crawl.MaxItems
		}
		logger.Info("starting crawl",
			zap.String("url", flags.rootURL),
			zap.Bool("force", flags.force),
			zap.Int("max_items", maxItems))
		t := crawl.NewTraversal(list, flags.rootURL, crawl.TraversalOptions{MaxItems: maxItems}, logger)
		orch.Run(ctx, t)
	}

	printSummary(ctx, cmd, orch.Stats(), failures)
	return nil
}

func buildStores(ctx context.Context, cfg config.Config, dryRun bool) (crawl.MediaStore, crawl.DirectoryStore, crawl.FailureStore, func(), error) {
	if dryRun {
		return memory.NewMediaStore(), memory.NewDirectoryStore(), memory.NewFailureStore(), func() {}, nil
	}

	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return postgres.NewMediaStore(pool), postgres.NewDirectoryStore(pool), postgres.NewFailureStore(pool), pool.Close, nil
}

func buildProvider(cfg config.Config, logger *zap.Logger) crawl.MetadataProvider {
	primary := tmdb.NewClient(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Timeout:      cfg.ProviderTimeout(),
	})

	var fallback metadata.PosterFallback
	if cfg.OMDB.APIKey != "" {
		fallback = omdb.NewClient(omdb.Config{
			APIKey:  cfg.OMDB.APIKey,
			BaseURL: cfg.OMDB.BaseURL,
			Timeout: cfg.ProviderTimeout(),
		})
	}
	return metadata.NewChain(primary, fallback, logger)
}

func startMetricsServer(addr string, logger *zap.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func printSummary(ctx context.Context, cmd *cobra.Command, stats crawl.Stats, failures crawl.FailureStore) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanned %d entries\n", stats.Scanned)
	fmt.Fprintf(out, "  new items:          %d\n", stats.NewItems)
	fmt.Fprintf(out, "  updated items:      %d\n", stats.UpdatedItems)
	fmt.Fprintf(out, "  metadata fetched:   %d\n", stats.MetadataFetched)
	fmt.Fprintf(out, "  direct files:       %d\n", stats.DirectFiles)
	fmt.Fprintf(out, "  skipped unchanged:  %d\n", stats.SkippedUnchanged)
	fmt.Fprintf(out, "  skipped scheduled:  %d\n", stats.SkippedScheduled)
	fmt.Fprintf(out, "  failed (no media):  %d\n", stats.FailedNoMedia)
	fmt.Fprintf(out, "  failed (timeout):   %d\n", stats.FailedTimeout)
	fmt.Fprintf(out, "  failed (error):     %d\n", stats.FailedError)

	if !stats.Changed() {
		fmt.Fprintln(out, "No new or updated media found.")
	}
	if n, err := failures.Count(ctx); err == nil && n > 0 {
		fmt.Fprintf(out, "%d directories in the failure ledger (see 'mediadex failures').\n", n)
	}
}
