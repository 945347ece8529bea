// Package snapshot persists one JSON file per announcement day plus the
// rolling count index.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/JakeFAU/arxiv-daily/internal/metrics"
	"github.com/JakeFAU/arxiv-daily/internal/model"
	"github.com/JakeFAU/arxiv-daily/internal/storage"
)

const indexFile = "index.json"

var snapshotName = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.json$`)

// Store writes day snapshots and the count index under one directory.
type Store struct {
	dir      string
	keepDays int
	mirror   storage.Provider
	prefix   string
	logger   *zap.Logger
}

// New returns a Store rooted at dir, creating it if needed. mirror may be
// nil, in which case snapshots are kept on local disk only.
func New(dir string, keepDays int, mirror storage.Provider, prefix string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	if mirror == nil {
		mirror = &storage.NoOpProvider{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:      dir,
		keepDays: keepDays,
		mirror:   mirror,
		prefix:   prefix,
		logger:   logger,
	}, nil
}

// WriteDay serializes the paper list for one announcement day, replacing any
// prior snapshot for the same date, and updates the count index. Both writes
// go through a temp file and rename so readers never observe a torn file.
func (s *Store) WriteDay(ctx context.Context, date string, papers []model.Paper) error {
	if papers == nil {
		papers = []model.Paper{}
	}

	payload, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		metrics.ObserveSnapshotWrite("error", 0)
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	target := filepath.Join(s.dir, date+".json")
	if err := writeAtomic(target, payload); err != nil {
		metrics.ObserveSnapshotWrite("error", 0)
		return fmt.Errorf("write snapshot %s: %w", target, err)
	}

	if err := s.updateIndex(date, len(papers)); err != nil {
		metrics.ObserveSnapshotWrite("error", 0)
		return err
	}
	metrics.ObserveSnapshotWrite("ok", len(papers))

	// Mirroring is best effort; the local write is the source of truth.
	if err := s.mirror.Save(ctx, path.Join(s.prefix, date+".json"), payload); err != nil {
		s.logger.Warn("snapshot mirror failed",
			zap.String("date", date),
			zap.Error(err),
		)
	}
	return nil
}

// Index returns the current count index, oldest date first. A missing or
// corrupt index file reads as empty.
func (s *Store) Index() []model.IndexEntry {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read index failed; treating as empty", zap.Error(err))
		}
		return nil
	}
	var entries []model.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("corrupt index; treating as empty", zap.Error(err))
		return nil
	}
	return entries
}

func (s *Store) updateIndex(date string, count int) error {
	existing := s.Index()
	entries := make([]model.IndexEntry, 0, len(existing)+1)
	for _, e := range existing {
		if e.Date != date {
			entries = append(entries, e)
		}
	}
	entries = append(entries, model.IndexEntry{Date: date, Count: count})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, indexFile), payload); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Sweep deletes the oldest snapshot files so that at most keepDays dated
// files remain. Index entries are deliberately kept; they are the cheap
// historical record of what each pruned day contained.
func (s *Store) Sweep() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	var dated []string
	for _, e := range entries {
		if !e.IsDir() && snapshotName.MatchString(e.Name()) {
			dated = append(dated, e.Name())
		}
	}
	if len(dated) <= s.keepDays {
		return nil
	}

	// Names are YYYY-MM-DD.json, so lexical order is date order.
	sort.Strings(dated)
	for _, name := range dated[:len(dated)-s.keepDays] {
		target := filepath.Join(s.dir, name)
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove old snapshot %s: %w", target, err)
		}
		s.logger.Info("deleted old snapshot", zap.String("file", target))
	}
	return nil
}

func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, target, err)
	}
	return nil
}
