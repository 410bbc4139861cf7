package domain

import "time"

// DayWindow is the rolling-daily withdrawal window: start and end of the
// calendar day containing now, resolved in the bank's fixed timezone rather
// than UTC midnight. Both endpoints are inclusive.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// DayWindowAt resolves the daily window containing now in loc. The window is
// recomputed on every evaluation; callers must not cache it across days.
func DayWindowAt(now time.Time, loc *time.Location) DayWindow {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	return DayWindow{
		Start: start.UTC(),
		End:   end.UTC(),
	}
}

// Contains reports whether t falls inside the window, endpoints included.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
