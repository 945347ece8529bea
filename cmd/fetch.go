package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/arxiv-daily/internal/arxiv"
	"github.com/JakeFAU/arxiv-daily/internal/config"
	"github.com/JakeFAU/arxiv-daily/internal/feed"
	"github.com/JakeFAU/arxiv-daily/internal/metrics"
	"github.com/JakeFAU/arxiv-daily/internal/snapshot"
	"github.com/JakeFAU/arxiv-daily/internal/storage"
)

// newFetchCmd creates the 'fetch' subcommand, which runs the announce-day
// pipeline once and exits.
func newFetchCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one announcement day's papers and write the snapshot",
		Long: `Retrieves recent submissions for every configured category, keeps the
entries belonging to the requested announcement day, deduplicates them across
categories, and writes the day's JSON snapshot and count index.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd.Context(), dateFlag)
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "announcement day as YYYY-MM-DD (default: today in the anchor zone)")
	return cmd
}

func runFetch(ctx context.Context, dateFlag string) error {
	cfg, logger, err := setup("fetch")
	if err != nil {
		return err
	}
	defer syncLogger(logger)
	metrics.Init()

	loc, err := cfg.Fetch.Location()
	if err != nil {
		return err
	}

	day := time.Now().In(loc)
	if dateFlag != "" {
		day, err = time.ParseInLocation("2006-01-02", dateFlag, loc)
		if err != nil {
			return fmt.Errorf("parse --date %q: %w", dateFlag, err)
		}
	}

	client := arxiv.NewClient(
		arxiv.WithUserAgent(cfg.Fetch.UserAgent),
		arxiv.WithTimeout(cfg.HTTP.Timeout()),
		arxiv.WithRetries(cfg.HTTP.MaxRetries, cfg.HTTP.BackoffInitial(), cfg.HTTP.BackoffMax()),
		arxiv.WithPageDelay(cfg.Fetch.PageDelay()),
		arxiv.WithLogger(logger),
	)

	mirror, err := buildMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := snapshot.New(cfg.Fetch.OutputDir, cfg.Fetch.KeepDays, mirror, cfg.Storage.Prefix, logger)
	if err != nil {
		return err
	}

	pipeline := feed.New(client, store, feed.Config{
		Categories: cfg.Fetch.Categories,
		PageSize:   cfg.Fetch.PageSize,
		MaxPages:   cfg.Fetch.MaxPages,
		AnchorHour: cfg.Fetch.AnchorHour,
		Location:   loc,
	}, logger)

	if err := pipeline.Run(ctx, day); err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	return nil
}

func buildMirror(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Provider, error) {
	switch cfg.Storage.Provider {
	case "gcs":
		logger.Info("mirroring snapshots to GCS", zap.String("bucket", cfg.Storage.GCSBucket))
		return storage.NewGCSProvider(ctx, cfg.Storage.GCSBucket, logger)
	case "noop", "":
		return &storage.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}
