package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/arxiv-daily/internal/arxiv"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	entry := arxiv.Entry{
		ID:        "http://arxiv.org/abs/2501.01234v1",
		Title:     "  A Study of Things\n",
		Summary:   " Abstract text. ",
		Published: "2026-08-28T17:59:02Z",
		Updated:   "2026-08-29T01:10:00Z",
		Categories: []arxiv.Category{
			{Term: "cs.AI"},
			{Term: "cs.LG"},
		},
		Authors: []arxiv.Author{
			{Name: "Ada Lovelace"},
			{Name: "Alan Turing"},
		},
	}

	p, ts, err := Normalize(entry)
	require.NoError(t, err)

	require.Equal(t, "http://arxiv.org/abs/2501.01234v1", p.ID)
	require.Equal(t, "A Study of Things", p.Title)
	require.Equal(t, "Abstract text.", p.Summary)
	require.Equal(t, "http://arxiv.org/pdf/2501.01234v1.pdf", p.Link)
	require.Equal(t, []string{"cs.AI", "cs.LG"}, p.Categories)
	require.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)

	// Update time wins over submission time.
	require.Equal(t, time.Date(2026, time.August, 29, 1, 10, 0, 0, time.UTC), ts)
}

func TestNormalizeFallsBackToPublished(t *testing.T) {
	t.Parallel()

	entry := arxiv.Entry{
		ID:        "http://arxiv.org/abs/2501.05678v2",
		Published: "2026-08-28T17:59:02Z",
		Updated:   "not a timestamp",
	}

	_, ts, err := Normalize(entry)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.August, 28, 17, 59, 2, 0, time.UTC), ts)
}

func TestNormalizeTolerantTimestamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"zulu suffix", "2026-08-28T17:59:02Z"},
		{"explicit offset", "2026-08-28T13:59:02-04:00"},
		{"no zone", "2026-08-28T17:59:02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ts, err := Normalize(arxiv.Entry{ID: "x", Published: tc.in})
			require.NoError(t, err)
			require.False(t, ts.IsZero())
		})
	}
}

func TestNormalizeRejectsUnparsableTimestamp(t *testing.T) {
	t.Parallel()

	_, _, err := Normalize(arxiv.Entry{
		ID:        "http://arxiv.org/abs/2501.09999v1",
		Published: "yesterday-ish",
	})
	require.Error(t, err)
}

func TestNormalizeEmptyOptionalFields(t *testing.T) {
	t.Parallel()

	p, _, err := Normalize(arxiv.Entry{
		ID:        "http://arxiv.org/abs/2501.00001v1",
		Published: "2026-08-28T00:00:00Z",
	})
	require.NoError(t, err)

	// Optional fields normalize to empty, never nil, so the snapshot JSON
	// carries [] rather than null.
	require.NotNil(t, p.Categories)
	require.NotNil(t, p.Authors)
	require.Empty(t, p.Categories)
	require.Empty(t, p.Authors)
}
