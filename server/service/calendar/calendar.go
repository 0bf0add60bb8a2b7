// Package calendar exposes the event store as a busy calendar and
// persists resolved slots as events.
package calendar

import (
	"context"
	"strconv"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/timepilot/server/service/slot"
	"github.com/hrygo/timepilot/store"
)

// Service answers busy interval queries and records scheduled events.
// Calendar IDs are the decimal form of the owning user ID.
type Service struct {
	store *store.Store
}

// NewService creates a calendar service over the store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// BusyIntervals returns the busy intervals of a calendar within the
// window, in the window's timezone.
func (s *Service) BusyIntervals(ctx context.Context, calendarID string, window slot.Interval) ([]slot.Interval, error) {
	creatorID, err := parseCalendarID(calendarID)
	if err != nil {
		return nil, err
	}

	startTs := window.Start.Unix()
	endTs := window.End.Unix()
	events, err := s.store.ListEvents(ctx, &store.FindEvent{
		CreatorID: &creatorID,
		StartTs:   &startTs,
		EndTs:     &endTs,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list events for calendar %s", calendarID)
	}

	loc := window.Start.Location()
	busy := make([]slot.Interval, 0, len(events))
	for _, event := range events {
		busy = append(busy, slot.NewInterval(
			time.Unix(event.StartTs, 0).In(loc),
			time.Unix(event.EndTs, 0).In(loc),
		))
	}
	return busy, nil
}

// RecordSlot persists a resolved slot as a calendar event.
func (s *Service) RecordSlot(ctx context.Context, calendarID, title string, start, end time.Time) (*store.Event, error) {
	creatorID, err := parseCalendarID(calendarID)
	if err != nil {
		return nil, err
	}

	event, err := s.store.CreateEvent(ctx, &store.Event{
		UID:       shortuuid.New(),
		CreatorID: creatorID,
		Title:     title,
		StartTs:   start.Unix(),
		EndTs:     end.Unix(),
		Timezone:  start.Location().String(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create event")
	}
	return event, nil
}

// EnergyProfile loads the hour weighting of a calendar owner. A missing
// or empty preference record yields nil, meaning uniform weights.
func (s *Service) EnergyProfile(ctx context.Context, calendarID string) (slot.EnergyProfile, error) {
	creatorID, err := parseCalendarID(calendarID)
	if err != nil {
		return nil, err
	}

	pref, err := s.store.GetUserPreference(ctx, &store.FindUserPreference{UserID: &creatorID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user preference")
	}
	if pref == nil {
		return nil, nil
	}

	prefs, err := pref.DecodePreferences()
	if err != nil {
		return nil, err
	}
	if len(prefs.EnergyWeights) == 0 {
		return nil, nil
	}
	return slot.EnergyProfile(prefs.EnergyWeights), nil
}

func parseCalendarID(calendarID string) (int32, error) {
	id, err := strconv.ParseInt(calendarID, 10, 32)
	if err != nil {
		return 0, errors.Errorf("invalid calendar id %q", calendarID)
	}
	return int32(id), nil
}
