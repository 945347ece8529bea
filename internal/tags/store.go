// Package tags stores the reader's bookmark state: a read-later list, named
// topics, and the starred papers under each topic. State lives in small JSON
// files and is always read and replaced wholesale.
package tags

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/arxiv-daily/internal/model"
)

const (
	readLaterFile = "read_later.json"
	topicsFile    = "topics.json"
	starsDir      = "stars"
)

// State is the full bookmark state exchanged with the front end.
type State struct {
	ReadLater    []model.Paper            `json:"readLater"`
	Topics       []string                 `json:"topics"`
	StarsByTopic map[string][]model.Paper `json:"starsByTopic"`
}

// Store reads and writes bookmark state under one directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New returns a Store rooted at dir, creating it and the stars subdirectory
// if needed.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, starsDir), 0o750); err != nil {
		return nil, fmt.Errorf("create tags dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// LoadAll reads the complete bookmark state. Missing or corrupt files read
// as empty; lists and maps in the result are never nil.
func (s *Store) LoadAll() State {
	st := State{
		ReadLater:    []model.Paper{},
		Topics:       []string{},
		StarsByTopic: map[string][]model.Paper{},
	}

	s.readJSON(filepath.Join(s.dir, readLaterFile), &st.ReadLater)
	s.readJSON(filepath.Join(s.dir, topicsFile), &st.Topics)
	if st.ReadLater == nil {
		st.ReadLater = []model.Paper{}
	}
	if st.Topics == nil {
		st.Topics = []string{}
	}

	for _, topic := range st.Topics {
		stars := []model.Paper{}
		s.readJSON(s.starsPath(topic), &stars)
		if stars == nil {
			stars = []model.Paper{}
		}
		st.StarsByTopic[topic] = stars
	}
	return st
}

// SaveAll replaces the complete bookmark state: both lists, one stars file
// per surviving topic, and removal of stars files whose topic is gone.
func (s *Store) SaveAll(st State) error {
	for _, topic := range st.Topics {
		if !validTopic(topic) {
			return fmt.Errorf("invalid topic name %q", topic)
		}
	}

	if err := s.writeJSON(filepath.Join(s.dir, readLaterFile), st.ReadLater); err != nil {
		return err
	}
	if err := s.writeJSON(filepath.Join(s.dir, topicsFile), st.Topics); err != nil {
		return err
	}

	if err := s.pruneStars(st.Topics); err != nil {
		return err
	}

	for _, topic := range st.Topics {
		stars := st.StarsByTopic[topic]
		if stars == nil {
			stars = []model.Paper{}
		}
		if err := s.writeJSON(s.starsPath(topic), stars); err != nil {
			return err
		}
	}
	return nil
}

// pruneStars deletes stars files for topics no longer present.
func (s *Store) pruneStars(topics []string) error {
	keep := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		keep[t] = struct{}{}
	}

	entries, err := os.ReadDir(filepath.Join(s.dir, starsDir))
	if err != nil {
		return fmt.Errorf("read stars dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		topic := strings.TrimSuffix(name, ".json")
		if _, ok := keep[topic]; ok {
			continue
		}
		target := filepath.Join(s.dir, starsDir, name)
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove stale stars file %s: %w", target, err)
		}
		s.logger.Info("removed stale topic stars", zap.String("topic", topic))
	}
	return nil
}

func (s *Store) starsPath(topic string) string {
	return filepath.Join(s.dir, starsDir, topic+".json")
}

func (s *Store) readJSON(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read bookmark file failed; treating as empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt bookmark file; treating as empty",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

func (s *Store) writeJSON(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// validTopic rejects names that would escape the stars directory.
func validTopic(topic string) bool {
	if topic == "" || topic == "." || topic == ".." {
		return false
	}
	return !strings.ContainsAny(topic, `/\`)
}
