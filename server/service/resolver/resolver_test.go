package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timepilot/server/service/slot"
)

// Sunday 2026-03-01 10:00 UTC is the reference time for all tests.
var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type mockBusySource struct {
	busy      []slot.Interval
	err       error
	gotWindow slot.Interval
}

func (m *mockBusySource) BusyIntervals(_ context.Context, _ string, window slot.Interval) ([]slot.Interval, error) {
	m.gotWindow = window
	if m.err != nil {
		return nil, m.err
	}
	return m.busy, nil
}

func newTestResolver(busy *mockBusySource) *Resolver {
	return New(busy, RuleExtractor{},
		WithBuffer(30*time.Minute),
		WithGranularity(30*time.Minute),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return testNow }),
	)
}

func TestResolve_ExactRequest(t *testing.T) {
	ctx := context.Background()
	busy := &mockBusySource{}
	r := newTestResolver(busy)

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "明天下午2点到4点开会"})
	require.NoError(t, err)

	scheduled, ok := outcome.(ScheduledSlot)
	require.True(t, ok, "expected a scheduled slot, got %T", outcome)
	assert.Equal(t, "开会", scheduled.Title)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), scheduled.Start)
	assert.Equal(t, time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC), scheduled.End)
	assert.Equal(t, 1.0, scheduled.Score, "explicit times bypass scoring")
}

func TestResolve_ExactPastTimeRejected(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(&mockBusySource{})

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "今天上午9点开会"})
	require.NoError(t, err)

	failure, ok := outcome.(ResolutionFailure)
	require.True(t, ok, "expected a failure, got %T", outcome)
	assert.Equal(t, ReasonPastTime, failure.Reason)
}

func TestResolve_ExactInsideBufferRejected(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(&mockBusySource{})

	// 10:15 is in the future but inside the 30-minute buffer from 10:00.
	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "今天上午10:15开会"})
	require.NoError(t, err)

	failure, ok := outcome.(ResolutionFailure)
	require.True(t, ok)
	assert.Equal(t, ReasonPastTime, failure.Reason)
}

func TestResolve_ExactConflictingRequest(t *testing.T) {
	ctx := context.Background()
	busy := &mockBusySource{busy: []slot.Interval{
		slot.NewInterval(
			time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		),
	}}
	r := newTestResolver(busy)

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "明天下午2点到4点开会"})
	require.NoError(t, err)

	failure, ok := outcome.(ResolutionFailure)
	require.True(t, ok)
	assert.Equal(t, ReasonNoFreeSlot, failure.Reason)
	assert.Equal(t, 120, failure.DurationMinutes)
}

func TestResolve_WindowedRequest(t *testing.T) {
	ctx := context.Background()
	busy := &mockBusySource{}
	r := newTestResolver(busy)

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "明天下午排3小時開會"})
	require.NoError(t, err)

	scheduled, ok := outcome.(ScheduledSlot)
	require.True(t, ok, "expected a scheduled slot, got %T", outcome)
	assert.Equal(t, "開會", scheduled.Title)
	assert.Equal(t, time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC), scheduled.Start)
	assert.Equal(t, time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC), scheduled.End)

	// The busy query covers the whole afternoon window.
	assert.Equal(t, time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC), busy.gotWindow.Start)
	assert.Equal(t, time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), busy.gotWindow.End)
}

func TestResolve_WindowedPrefersEnergyProfile(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(&mockBusySource{})

	outcome, err := r.Resolve(ctx, Request{
		CalendarID: "1",
		Text:       "明天下午开会",
		Energy:     slot.EnergyProfile{16: 0.9},
	})
	require.NoError(t, err)

	scheduled, ok := outcome.(ScheduledSlot)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC), scheduled.Start)
	assert.InDelta(t, 0.9, scheduled.Score, 1e-9)
}

func TestResolve_WindowedNoFreeSlot(t *testing.T) {
	ctx := context.Background()
	busy := &mockBusySource{busy: []slot.Interval{
		slot.NewInterval(
			time.Date(2026, 3, 2, 13, 30, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		),
	}}
	r := newTestResolver(busy)

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "明天下午排3小時開會"})
	require.NoError(t, err)

	failure, ok := outcome.(ResolutionFailure)
	require.True(t, ok, "expected a failure, got %T", outcome)
	assert.Equal(t, ReasonNoFreeSlot, failure.Reason)
	assert.Equal(t, 180, failure.DurationMinutes)
	assert.Equal(t, 60, failure.LargestGapMinutes, "largest remaining gap is 17:00-18:00")
}

func TestResolve_WindowTooNarrow(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(&mockBusySource{})

	// The noon window is two hours; three hours can never fit.
	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "明天中午排3小時開會"})
	require.NoError(t, err)

	failure, ok := outcome.(ResolutionFailure)
	require.True(t, ok)
	assert.Equal(t, ReasonWindowTooNarrow, failure.Reason)
}

func TestResolve_SameDayWindowRespectsBuffer(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(&mockBusySource{})

	// Now is 10:00; the morning window is 8:00-12:00 and the buffer ends
	// at 10:30, so the earliest candidate is 10:30.
	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "今天上午开会"})
	require.NoError(t, err)

	scheduled, ok := outcome.(ScheduledSlot)
	require.True(t, ok, "expected a scheduled slot, got %T", outcome)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), scheduled.Start)
}

func TestResolve_PastWindowRejected(t *testing.T) {
	ctx := context.Background()
	busy := &mockBusySource{}

	// Move the clock past the whole evening window.
	r := New(busy, RuleExtractor{},
		WithBuffer(30*time.Minute),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC) }),
	)

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "今天晚上开会"})
	require.NoError(t, err)

	failure, ok := outcome.(ResolutionFailure)
	require.True(t, ok)
	assert.Equal(t, ReasonPastTime, failure.Reason)
}

func TestResolve_AmbiguousRequest(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(&mockBusySource{})

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "帮我安排一下"})
	require.NoError(t, err)

	clarification, ok := outcome.(NeedsClarification)
	require.True(t, ok, "expected a clarification ask, got %T", outcome)
	assert.NotEmpty(t, clarification.Hint)
}

func TestResolve_DefaultTitle(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(&mockBusySource{})

	outcome, err := r.Resolve(ctx, Request{CalendarID: "1", Text: "明天下午2点到4点"})
	require.NoError(t, err)

	scheduled, ok := outcome.(ScheduledSlot)
	require.True(t, ok)
	assert.Equal(t, DefaultTitle, scheduled.Title)
}

func TestResolve_BusySourceError(t *testing.T) {
	ctx := context.Background()
	busy := &mockBusySource{err: errors.New("connection refused")}
	r := newTestResolver(busy)

	_, err := r.Resolve(ctx, Request{CalendarID: "7", Text: "明天下午排3小時開會"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load busy intervals for calendar 7")
}
