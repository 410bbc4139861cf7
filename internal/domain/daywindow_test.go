package domain

import (
	"testing"
	"time"
)

func bankLocation(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	return loc
}

func TestDayWindowAt(t *testing.T) {
	loc := bankLocation(t)

	// 2026-03-10 01:30 UTC is 08:30 on March 10th local (UTC+7).
	now := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	window := DayWindowAt(now, loc)

	wantStart := time.Date(2026, 3, 9, 17, 0, 0, 0, time.UTC)
	if !window.Start.Equal(wantStart) {
		t.Errorf("Start = %s, want %s", window.Start, wantStart)
	}

	wantEnd := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if !window.End.Equal(wantEnd) {
		t.Errorf("End = %s, want %s", window.End, wantEnd)
	}
}

func TestDayWindowAt_LocalDayDiffersFromUTCDay(t *testing.T) {
	loc := bankLocation(t)

	// 2026-03-10 20:00 UTC is already 03:00 on March 11th local. The window
	// must be the local 11th, not the UTC 10th.
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	window := DayWindowAt(now, loc)

	wantStart := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	if !window.Start.Equal(wantStart) {
		t.Errorf("Start = %s, want %s", window.Start, wantStart)
	}
}

func TestDayWindow_Contains(t *testing.T) {
	loc := bankLocation(t)
	window := DayWindowAt(time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC), loc)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"start boundary", window.Start, true},
		{"end boundary", window.End, true},
		{"inside", window.Start.Add(12 * time.Hour), true},
		{"just before start", window.Start.Add(-time.Nanosecond), false},
		{"just after end", window.End.Add(time.Nanosecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestDayWindowAt_AdjacentWindowsDoNotOverlap(t *testing.T) {
	loc := bankLocation(t)

	today := DayWindowAt(time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC), loc)
	tomorrow := DayWindowAt(today.End.Add(time.Nanosecond), loc)

	if tomorrow.Contains(today.End) {
		t.Error("adjacent windows overlap")
	}

	if !tomorrow.Start.Equal(today.End.Add(time.Nanosecond)) {
		t.Errorf("tomorrow.Start = %s, want %s", tomorrow.Start, today.End.Add(time.Nanosecond))
	}
}
