package slot

import (
	"time"
)

const (
	// DefaultEnergyWeight is assumed for hours without an explicit weight.
	DefaultEnergyWeight = 0.5

	// DefaultGranularity is the candidate start alignment step.
	DefaultGranularity = 30 * time.Minute
)

// EnergyProfile maps an hour of day (0-23) to a preference weight.
// Higher means the user prefers scheduling in that hour.
type EnergyProfile map[int]float64

// Weight returns the configured weight for an hour, or the default.
func (p EnergyProfile) Weight(hour int) float64 {
	if w, ok := p[hour]; ok {
		return w
	}
	return DefaultEnergyWeight
}

// Slot is a scored candidate placement.
type Slot struct {
	Start time.Time
	End   time.Time
	Score float64
}

// SelectionResult reports the outcome of a selection pass. Best is nil
// when no candidate fits; LargestGap then carries the biggest free
// interval found, for diagnostics.
type SelectionResult struct {
	Best       *Slot
	LargestGap time.Duration
	Considered int
}

// Options tunes candidate enumeration.
type Options struct {
	// Granularity aligns candidate starts; zero means DefaultGranularity.
	Granularity time.Duration
	// NotBefore drops candidates starting earlier, e.g. now plus a buffer.
	// Zero value disables the constraint.
	NotBefore time.Time
}

func (o Options) granularity() time.Duration {
	if o.Granularity > 0 {
		return o.Granularity
	}
	return DefaultGranularity
}

// Select enumerates candidate slots of the given duration inside the
// window, skips those overlapping busy intervals, scores the rest by the
// mean energy weight of the hours they span and returns the best.
// Ties keep the earliest candidate.
func Select(window Interval, busy []Interval, duration time.Duration, profile EnergyProfile, opts Options) SelectionResult {
	result := SelectionResult{}
	if duration <= 0 || !window.IsValid() {
		return result
	}

	free := FreeIntervals(window, busy)
	for _, f := range free {
		if f.Duration() > result.LargestGap {
			result.LargestGap = f.Duration()
		}
	}
	if window.Duration() < duration {
		return result
	}

	step := opts.granularity()
	for start := window.Start; !start.Add(duration).After(window.End); start = start.Add(step) {
		if !opts.NotBefore.IsZero() && start.Before(opts.NotBefore) {
			continue
		}
		candidate := Interval{Start: start, End: start.Add(duration)}
		if !fitsFree(candidate, free) {
			continue
		}
		result.Considered++
		score := scoreCandidate(candidate, profile)
		if result.Best == nil || score > result.Best.Score {
			result.Best = &Slot{Start: candidate.Start, End: candidate.End, Score: score}
		}
	}
	return result
}

// fitsFree reports whether the candidate lies entirely within a single
// free interval. Free intervals are disjoint, so spanning two of them
// would mean crossing a busy period.
func fitsFree(candidate Interval, free []Interval) bool {
	for _, f := range free {
		if f.Contains(candidate) {
			return true
		}
	}
	return false
}

// scoreCandidate averages the energy weight over every hour of day the
// candidate touches. A slot from 9:30 to 11:00 spans hours 9, 10.
func scoreCandidate(c Interval, profile EnergyProfile) float64 {
	var sum float64
	var count int
	hour := time.Date(c.Start.Year(), c.Start.Month(), c.Start.Day(), c.Start.Hour(), 0, 0, 0, c.Start.Location())
	for hour.Before(c.End) {
		sum += profile.Weight(hour.Hour())
		count++
		hour = hour.Add(time.Hour)
	}
	if count == 0 {
		return DefaultEnergyWeight
	}
	return sum / float64(count)
}
