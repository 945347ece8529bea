package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/JakeFAU/arxiv-daily/internal/arxiv"
	"github.com/JakeFAU/arxiv-daily/internal/model"
)

// Normalize maps one raw upstream entry to a canonical Paper plus its
// resolved timestamp. The update time wins over the submission time when both
// parse; an entry with no parseable timestamp is rejected.
func Normalize(e arxiv.Entry) (model.Paper, time.Time, error) {
	ts, err := resolveTimestamp(e)
	if err != nil {
		return model.Paper{}, time.Time{}, err
	}

	categories := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		if c.Term != "" {
			categories = append(categories, c.Term)
		}
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	p := model.Paper{
		ID:         e.ID,
		Title:      strings.TrimSpace(e.Title),
		Summary:    strings.TrimSpace(e.Summary),
		Published:  e.Published,
		Link:       pdfLink(e.ID),
		Categories: categories,
		Authors:    authors,
	}
	return p, ts, nil
}

func resolveTimestamp(e arxiv.Entry) (time.Time, error) {
	if t, err := parseTime(e.Updated); err == nil {
		return t, nil
	}
	t, err := parseTime(e.Published)
	if err != nil {
		return time.Time{}, fmt.Errorf("entry %s: no parseable timestamp: %w", e.ID, err)
	}
	return t, nil
}

// parseTime accepts RFC 3339 with or without an explicit zone; arXiv emits a
// trailing "Z".
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// pdfLink derives the PDF URL from the canonical abstract id, e.g.
// http://arxiv.org/abs/2501.01234v1 -> http://arxiv.org/pdf/2501.01234v1.pdf
func pdfLink(id string) string {
	return strings.Replace(id, "/abs/", "/pdf/", 1) + ".pdf"
}
