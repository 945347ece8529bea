// Package model defines the record types persisted by the service.
package model

// Paper is the canonical, persisted form of one arXiv entry. The field names
// mirror the snapshot JSON consumed by the front end.
type Paper struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Published  string   `json:"published"`
	Link       string   `json:"link"`
	Categories []string `json:"category"`
	Authors    []string `json:"authors"`
}

// IndexEntry records how many papers were captured for one announcement day.
type IndexEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
