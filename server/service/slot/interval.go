// Package slot computes free intervals from busy calendars and selects
// the best slot for a requested duration inside a search window.
package slot

import (
	"fmt"
	"sort"
	"time"
)

// Interval is a half-open time interval [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval creates an interval.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsValid reports whether the interval has positive length.
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// MergeBusy normalizes a busy list: drops empty intervals, sorts by start
// and coalesces overlapping or touching neighbors. The input is not modified.
func MergeBusy(busy []Interval) []Interval {
	valid := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if b.IsValid() {
			valid = append(valid, b)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(a, b int) bool {
		return valid[a].Start.Before(valid[b].Start)
	})

	merged := []Interval{valid[0]}
	for _, cur := range valid[1:] {
		last := &merged[len(merged)-1]
		// Touching intervals merge, there is no usable gap between them.
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// FreeIntervals returns the gaps inside window not covered by busy.
// Busy intervals may overlap each other and extend beyond the window;
// only the portion inside the window matters. An empty busy list yields
// the whole window.
func FreeIntervals(window Interval, busy []Interval) []Interval {
	if !window.IsValid() {
		return nil
	}

	var free []Interval
	cursor := window.Start
	for _, b := range MergeBusy(busy) {
		if !b.End.After(window.Start) {
			continue
		}
		if !b.Start.Before(window.End) {
			break
		}
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}
