// Package extract turns raw natural-language scheduling requests into
// structured intents. It is a pure, rule-based pipeline: no I/O, no shared
// state, and it never fails on malformed input.
package extract

import "time"

// DefaultDurationMinutes is the assumed event length when the request does not
// specify one.
const DefaultDurationMinutes = 60

// Period is a coarse time-of-day bucket carried by period keywords such as
// "上午" or "下午". Each period maps to a fixed [StartHour, EndHour) range.
type Period int

const (
	PeriodUnknown Period = iota
	PeriodMorning
	PeriodNoon
	PeriodAfternoon
	PeriodEvening
)

// Hours returns the fixed [start, end) hour range of the period.
func (p Period) Hours() (startHour, endHour int) {
	switch p {
	case PeriodMorning:
		return 8, 12
	case PeriodNoon:
		return 12, 14
	case PeriodAfternoon:
		return 13, 18
	case PeriodEvening:
		return 18, 22
	default:
		return 0, 24
	}
}

func (p Period) String() string {
	switch p {
	case PeriodMorning:
		return "morning"
	case PeriodNoon:
		return "noon"
	case PeriodAfternoon:
		return "afternoon"
	case PeriodEvening:
		return "evening"
	default:
		return "unknown"
	}
}

// ParsedIntent is the extractor output. Exactly one of three shapes is
// schedulable:
//   - exact: ExactStart set (ExactEnd optional), Period/TargetDate advisory.
//   - windowed: Period + TargetDate + DurationMinutes set, no ExactStart.
//   - ambiguous: neither, only the default duration; the caller should
//     re-prompt the user.
type ParsedIntent struct {
	Title           string
	ExactStart      *time.Time
	ExactEnd        *time.Time
	DurationMinutes int
	Period          Period
	TargetDate      *time.Time // midnight of the target day in the request timezone
}

// IsExact reports whether the request pinned an explicit start time.
func (i ParsedIntent) IsExact() bool {
	return i.ExactStart != nil
}

// IsWindowed reports whether the request asks for a free slot inside a
// period window.
func (i ParsedIntent) IsWindowed() bool {
	return !i.IsExact() && i.Period != PeriodUnknown && i.TargetDate != nil && i.DurationMinutes > 0
}

// IsAmbiguous reports whether the request carries no usable time information.
func (i ParsedIntent) IsAmbiguous() bool {
	return !i.IsExact() && !i.IsWindowed()
}

// Duration returns the requested duration, falling back to the default.
func (i ParsedIntent) Duration() time.Duration {
	minutes := i.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}
