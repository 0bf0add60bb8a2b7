// Package resolver turns a natural language scheduling request into a
// concrete scheduled slot, a diagnosed failure or a clarification ask.
package resolver

import (
	"time"

	"github.com/hrygo/timepilot/server/service/slot"
)

// FailureReason classifies why a request could not be resolved.
type FailureReason string

const (
	// ReasonPastTime means the requested exact time is already behind
	// now plus the scheduling buffer.
	ReasonPastTime FailureReason = "past_time"
	// ReasonWindowTooNarrow means the search window is shorter than the
	// requested duration, so no candidate could ever fit.
	ReasonWindowTooNarrow FailureReason = "window_too_narrow"
	// ReasonNoFreeSlot means candidates existed but every one collided
	// with busy periods or constraints.
	ReasonNoFreeSlot FailureReason = "no_free_slot"
)

// Outcome is the result of resolving a request. Exactly one of
// ScheduledSlot, ResolutionFailure or NeedsClarification is returned.
type Outcome interface {
	isOutcome()
}

// ScheduledSlot is a successfully placed event.
type ScheduledSlot struct {
	Title string
	Start time.Time
	End   time.Time
	Score float64
}

func (ScheduledSlot) isOutcome() {}

// ResolutionFailure carries a reason plus enough diagnostics for the
// caller to explain the failure or retry with a smaller duration.
type ResolutionFailure struct {
	Reason            FailureReason
	DurationMinutes   int
	Window            slot.Interval
	LargestGapMinutes int
}

func (ResolutionFailure) isOutcome() {}

// NeedsClarification means the request carried no usable time signal.
type NeedsClarification struct {
	Hint string
}

func (NeedsClarification) isOutcome() {}
