package feed

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestResolveWindow(t *testing.T) {
	t.Parallel()
	est := mustLoad(t, "America/New_York")

	t.Run("ordinary day is 24 hours", func(t *testing.T) {
		w := ResolveWindow(2026, time.July, 15, est, 20)
		if got, want := w.Duration(), 24*time.Hour; got != want {
			t.Errorf("duration = %v, want %v", got, want)
		}
		// 20:00 EDT is 00:00 UTC the next day.
		wantEnd := time.Date(2026, time.July, 16, 0, 0, 0, 0, time.UTC)
		if !w.End.Equal(wantEnd) {
			t.Errorf("end = %v, want %v", w.End, wantEnd)
		}
	})

	t.Run("spring forward yields 23 hours", func(t *testing.T) {
		// US DST starts 2026-03-08 at 02:00 local.
		w := ResolveWindow(2026, time.March, 8, est, 20)
		if got, want := w.Duration(), 23*time.Hour; got != want {
			t.Errorf("duration = %v, want %v", got, want)
		}
	})

	t.Run("fall back yields 25 hours", func(t *testing.T) {
		// US DST ends 2026-11-01 at 02:00 local.
		w := ResolveWindow(2026, time.November, 1, est, 20)
		if got, want := w.Duration(), 25*time.Hour; got != want {
			t.Errorf("duration = %v, want %v", got, want)
		}
	})

	t.Run("month boundary normalizes", func(t *testing.T) {
		w := ResolveWindow(2026, time.March, 1, est, 20)
		wantStart := time.Date(2026, time.February, 28, 20, 0, 0, 0, est).UTC()
		if !w.Start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", w.Start, wantStart)
		}
	})

	t.Run("endpoints are UTC", func(t *testing.T) {
		w := ResolveWindow(2026, time.July, 15, est, 20)
		if w.Start.Location() != time.UTC || w.End.Location() != time.UTC {
			t.Errorf("window endpoints not UTC: %v, %v", w.Start.Location(), w.End.Location())
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := ResolveWindow(2026, time.July, 15, est, 20)
		b := ResolveWindow(2026, time.July, 15, est, 20)
		if a != b {
			t.Errorf("same inputs produced different windows: %v vs %v", a, b)
		}
	})
}

func TestWindowContains(t *testing.T) {
	t.Parallel()

	w := Window{
		Start: time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.July, 16, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"start is inside", w.Start, true},
		{"end is outside", w.End, false},
		{"middle is inside", w.Start.Add(12 * time.Hour), true},
		{"before start is outside", w.Start.Add(-time.Nanosecond), false},
		{"just before end is inside", w.End.Add(-time.Nanosecond), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.Contains(tc.t); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}
