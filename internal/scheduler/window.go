// Package scheduler implements the replan engine core: availability
// resolution, eligibility filtering, job bundling, locked/fixed slot
// handling and the day-by-day placement optimizer. The package is pure with
// respect to its inputs; all datastore access happens in the calling
// service layer.
package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// IsZero reports whether the window is empty or inverted.
func (w TimeWindow) IsZero() bool {
	return !w.End.After(w.Start)
}

// Overlaps reports whether two half-open windows intersect.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether the whole of other lies within w.
func (w TimeWindow) Contains(other TimeWindow) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// Subtract removes other from w, returning zero, one or two remainders.
func (w TimeWindow) Subtract(other TimeWindow) []TimeWindow {
	if !w.Overlaps(other) {
		return []TimeWindow{w}
	}
	var out []TimeWindow
	if other.Start.After(w.Start) {
		out = append(out, TimeWindow{Start: w.Start, End: other.Start})
	}
	if other.End.Before(w.End) {
		out = append(out, TimeWindow{Start: other.End, End: w.End})
	}
	return out
}

// SubtractAll removes every window in blocks from the set, keeping the
// result sorted by start time.
func SubtractAll(windows []TimeWindow, blocks []TimeWindow) []TimeWindow {
	out := windows
	for _, block := range blocks {
		var next []TimeWindow
		for _, w := range out {
			next = append(next, w.Subtract(block)...)
		}
		out = next
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// clockOnDate parses a "HH:MM" or "HH:MM:SS" clock string onto the given
// date in the date's location.
func clockOnDate(date time.Time, clock string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("parse clock %q: expected HH:MM[:SS]", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("parse clock %q: invalid hour", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("parse clock %q: invalid minute", clock)
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return time.Time{}, fmt.Errorf("parse clock %q: invalid second", clock)
		}
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, second, 0, date.Location()), nil
}

// dateOnly truncates t to midnight in its location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDate reports whether both instants fall on the same calendar day.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
