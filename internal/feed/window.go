package feed

import (
	"time"
)

// Window is the half-open UTC interval [Start, End) covering one
// announcement day.
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow maps an announcement day to its UTC retrieval window. The
// window runs from the anchor hour on the previous civil day to the anchor
// hour on day itself, both taken in loc. Each endpoint is built in local time
// and converted to UTC independently, so a daylight-saving transition between
// them yields a 23h or 25h window rather than a shifted one.
func ResolveWindow(year int, month time.Month, day int, loc *time.Location, anchorHour int) Window {
	end := time.Date(year, month, day, anchorHour, 0, 0, 0, loc)
	start := time.Date(year, month, day-1, anchorHour, 0, 0, 0, loc)
	return Window{
		Start: start.UTC(),
		End:   end.UTC(),
	}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the window width.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
