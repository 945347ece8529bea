package feed

import "github.com/JakeFAU/arxiv-daily/internal/model"

// Dedupe merges per-category lists into one list with unique ids. Lists are
// consumed in the order given; the first occurrence of an id wins and later
// duplicates are dropped whole, so the output preserves first-seen order.
func Dedupe(lists ...[]model.Paper) []model.Paper {
	seen := make(map[string]struct{})
	var out []model.Paper
	for _, list := range lists {
		for _, p := range list {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
