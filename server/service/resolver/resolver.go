package resolver

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/timepilot/plugin/nlp/extract"
	"github.com/hrygo/timepilot/server/service/slot"
)

// DefaultTitle names events whose request carried no recognizable title.
const DefaultTitle = "新日程"

// DefaultBufferMinutes keeps new events at least this far from now.
const DefaultBufferMinutes = 30

// BusySource supplies the busy intervals of a calendar within a window.
type BusySource interface {
	BusyIntervals(ctx context.Context, calendarID string, window slot.Interval) ([]slot.Interval, error)
}

// IntentExtractor parses a natural language request into an intent.
// Implemented by the rule pipeline and by the LLM extractor.
type IntentExtractor interface {
	Extract(ctx context.Context, text string, now time.Time) (extract.ParsedIntent, error)
}

// RuleExtractor adapts the rule pipeline to the IntentExtractor interface.
type RuleExtractor struct{}

func (RuleExtractor) Extract(_ context.Context, text string, now time.Time) (extract.ParsedIntent, error) {
	return extract.Extract(text, now), nil
}

// Request is a single scheduling request to resolve.
type Request struct {
	CalendarID string
	Text       string
	// Energy tunes windowed slot scoring; nil means every hour weighs the same.
	Energy slot.EnergyProfile
}

// Resolver resolves scheduling requests against a busy calendar.
type Resolver struct {
	busy        BusySource
	extractor   IntentExtractor
	buffer      time.Duration
	granularity time.Duration
	loc         *time.Location
	now         func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBuffer sets the minimum distance between now and a new event.
func WithBuffer(d time.Duration) Option {
	return func(r *Resolver) { r.buffer = d }
}

// WithGranularity sets the candidate start alignment step.
func WithGranularity(d time.Duration) Option {
	return func(r *Resolver) { r.granularity = d }
}

// WithLocation sets the timezone requests are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) { r.loc = loc }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a Resolver over the given busy source and extractor.
func New(busy BusySource, extractor IntentExtractor, opts ...Option) *Resolver {
	r := &Resolver{
		busy:        busy,
		extractor:   extractor,
		buffer:      DefaultBufferMinutes * time.Minute,
		granularity: slot.DefaultGranularity,
		loc:         time.Local,
		now:         time.Now,
	}
	if r.extractor == nil {
		r.extractor = RuleExtractor{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses the request text and produces one of the three outcomes.
// The error return covers infrastructure failures only; a request that
// cannot be satisfied still resolves to a ResolutionFailure.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Outcome, error) {
	now := r.now().In(r.loc)
	intent, err := r.extractor.Extract(ctx, req.Text, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract intent")
	}

	title := intent.Title
	if title == "" {
		title = DefaultTitle
	}

	switch {
	case intent.IsExact():
		return r.resolveExact(ctx, req, title, intent, now)
	case intent.IsWindowed():
		return r.resolveWindowed(ctx, req, title, intent, now)
	default:
		return NeedsClarification{
			Hint: "请提供日期或时间信息，例如：明天下午3点开会",
		}, nil
	}
}

func (r *Resolver) resolveExact(ctx context.Context, req Request, title string, intent extract.ParsedIntent, now time.Time) (Outcome, error) {
	start := intent.ExactStart.In(r.loc)
	end := intent.ExactEnd.In(r.loc)
	requested := slot.NewInterval(start, end)

	if start.Before(now.Add(r.buffer)) {
		return ResolutionFailure{
			Reason:          ReasonPastTime,
			DurationMinutes: int(requested.Duration() / time.Minute),
			Window:          requested,
		}, nil
	}

	busy, err := r.busy.BusyIntervals(ctx, req.CalendarID, requested)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load busy intervals for calendar %s", req.CalendarID)
	}
	for _, b := range busy {
		if b.Overlaps(requested) {
			return ResolutionFailure{
				Reason:          ReasonNoFreeSlot,
				DurationMinutes: int(requested.Duration() / time.Minute),
				Window:          requested,
			}, nil
		}
	}

	return ScheduledSlot{Title: title, Start: start, End: end, Score: 1.0}, nil
}

func (r *Resolver) resolveWindowed(ctx context.Context, req Request, title string, intent extract.ParsedIntent, now time.Time) (Outcome, error) {
	day := now
	if intent.TargetDate != nil {
		day = intent.TargetDate.In(r.loc)
	}
	startHour, endHour := intent.Period.Hours()
	window := slot.NewInterval(
		time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, r.loc),
		time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, r.loc),
	)
	duration := intent.Duration()
	durationMinutes := int(duration / time.Minute)

	notBefore := now.Add(r.buffer)
	if !window.End.After(notBefore) {
		return ResolutionFailure{
			Reason:          ReasonPastTime,
			DurationMinutes: durationMinutes,
			Window:          window,
		}, nil
	}
	if window.Duration() < duration {
		return ResolutionFailure{
			Reason:          ReasonWindowTooNarrow,
			DurationMinutes: durationMinutes,
			Window:          window,
		}, nil
	}

	busy, err := r.busy.BusyIntervals(ctx, req.CalendarID, window)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load busy intervals for calendar %s", req.CalendarID)
	}

	opts := slot.Options{Granularity: r.granularity}
	if notBefore.After(window.Start) {
		opts.NotBefore = notBefore
	}
	result := slot.Select(window, busy, duration, req.Energy, opts)
	if result.Best == nil {
		return ResolutionFailure{
			Reason:            ReasonNoFreeSlot,
			DurationMinutes:   durationMinutes,
			Window:            window,
			LargestGapMinutes: int(result.LargestGap / time.Minute),
		}, nil
	}

	return ScheduledSlot{
		Title: title,
		Start: result.Best.Start,
		End:   result.Best.End,
		Score: result.Best.Score,
	}, nil
}
