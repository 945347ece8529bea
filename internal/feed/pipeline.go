// Package feed implements the announce-day retrieval pipeline: window
// resolution, normalization, window filtering, and cross-category
// deduplication.
package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/arxiv-daily/internal/arxiv"
	"github.com/JakeFAU/arxiv-daily/internal/metrics"
	"github.com/JakeFAU/arxiv-daily/internal/model"
)

// Retriever fetches raw entries for one category.
type Retriever interface {
	FetchCategory(ctx context.Context, category string, pageSize, maxPages int) ([]arxiv.Entry, error)
	Probe(ctx context.Context, category string) (int, error)
}

// Snapshotter persists the deduplicated day list and enforces retention.
type Snapshotter interface {
	WriteDay(ctx context.Context, date string, papers []model.Paper) error
	Sweep() error
}

// Config controls pipeline behavior.
type Config struct {
	Categories []string
	PageSize   int
	MaxPages   int
	AnchorHour int
	Location   *time.Location
}

// Pipeline runs the full announce-day retrieval for one calendar day.
type Pipeline struct {
	retriever Retriever
	store     Snapshotter
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Pipeline.
func New(retriever Retriever, store Snapshotter, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		retriever: retriever,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run retrieves, windows, deduplicates, and persists the papers for the
// announcement day containing the civil date of day in the anchor zone.
// Category failures degrade to empty contributions; only persistence
// failures (and context cancellation) are returned as errors.
func (p *Pipeline) Run(ctx context.Context, day time.Time) error {
	day = day.In(p.cfg.Location)
	window := ResolveWindow(day.Year(), day.Month(), day.Day(), p.cfg.Location, p.cfg.AnchorHour)
	date := day.Format("2006-01-02")

	p.logger.Info("resolved announcement window",
		zap.String("date", date),
		zap.Time("start", window.Start),
		zap.Time("end", window.End),
		zap.Duration("width", window.Duration()),
	)

	perCategory := make([][]model.Paper, 0, len(p.cfg.Categories))
	for _, cat := range p.cfg.Categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		perCategory = append(perCategory, p.fetchCategory(ctx, cat, window))
	}

	merged := Dedupe(perCategory...)
	if merged == nil {
		merged = []model.Paper{}
	}

	if err := p.store.WriteDay(ctx, date, merged); err != nil {
		return fmt.Errorf("write snapshot for %s: %w", date, err)
	}
	p.logger.Info("snapshot written",
		zap.String("date", date),
		zap.Int("papers", len(merged)),
	)

	if err := p.store.Sweep(); err != nil {
		p.logger.Warn("retention sweep failed", zap.Error(err))
	}
	return nil
}

// fetchCategory runs retrieve, normalize, and window-filter for one category.
// Errors are logged and degrade the category to zero entries so siblings
// still run.
func (p *Pipeline) fetchCategory(ctx context.Context, category string, window Window) []model.Paper {
	raw, err := p.retriever.FetchCategory(ctx, category, p.cfg.PageSize, p.cfg.MaxPages)
	if err != nil {
		p.logger.Error("category retrieval failed; contributing no entries",
			zap.String("category", category),
			zap.Error(err),
		)
		return nil
	}
	metrics.AddPapersFetched(category, len(raw))

	if len(raw) == 0 {
		p.probeEmpty(ctx, category)
		return nil
	}

	kept := make([]model.Paper, 0, len(raw))
	dropped := 0
	var oldest time.Time
	for _, e := range raw {
		paper, ts, nerr := Normalize(e)
		if nerr != nil {
			p.logger.Warn("dropping malformed entry",
				zap.String("category", category),
				zap.Error(nerr),
			)
			dropped++
			continue
		}
		// Entries arrive newest first, so the last parsed timestamp is the
		// oldest one fetched.
		oldest = ts
		if window.Contains(ts) {
			kept = append(kept, paper)
		}
	}
	metrics.AddPapersKept(category, len(kept))

	// If the page budget ran out before the feed aged past the window start,
	// the day's results are silently truncated.
	budget := p.cfg.PageSize * p.cfg.MaxPages
	if len(raw) >= budget && !oldest.IsZero() && !oldest.Before(window.Start) {
		p.logger.Warn("page budget exhausted inside retrieval window; results may be truncated, raise fetch.page_size or fetch.max_pages",
			zap.String("category", category),
			zap.Int("budget", budget),
			zap.Time("oldest_fetched", oldest),
			zap.Time("window_start", window.Start),
		)
	}

	p.logger.Info("category processed",
		zap.String("category", category),
		zap.Int("fetched", len(raw)),
		zap.Int("kept", len(kept)),
		zap.Int("dropped", dropped),
	)
	return kept
}

// probeEmpty issues the diagnostic unfiltered request for a category that
// yielded nothing. Its result is only logged.
func (p *Pipeline) probeEmpty(ctx context.Context, category string) {
	n, err := p.retriever.Probe(ctx, category)
	if err != nil {
		p.logger.Warn("category empty and diagnostic probe failed",
			zap.String("category", category),
			zap.Error(err),
		)
		return
	}
	p.logger.Warn("category yielded no entries",
		zap.String("category", category),
		zap.Int("probe_entries", n),
	)
}
