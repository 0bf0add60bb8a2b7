package store

import (
	"context"
	"time"
)

// Event is the object representing a calendar event.
type Event struct {
	ID          int32
	UID         string
	CreatorID   int32
	CreatedTs   int64
	UpdatedTs   int64
	Title       string
	Description string
	StartTs     int64
	EndTs       int64
	Timezone    string
}

// FindEvent is the find condition for events.
//
// StartTs and EndTs select events overlapping the half-open range
// [StartTs, EndTs): an event overlaps when event.start < EndTs and
// event.end > StartTs.
type FindEvent struct {
	ID        *int32
	UID       *string
	CreatorID *int32

	StartTs *int64
	EndTs   *int64

	Limit  *int
	Offset *int
}

// UpdateEvent is the update request for an event.
type UpdateEvent struct {
	ID          int32
	Title       *string
	Description *string
	StartTs     *int64
	EndTs       *int64
	Timezone    *string
}

// DeleteEvent is the delete request for an event.
type DeleteEvent struct {
	ID int32
}

// CreateEvent creates a new event.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists events with filter.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent gets a single event, or nil when none matches.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateEvent updates an event.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) error {
	return s.driver.UpdateEvent(ctx, update)
}

// DeleteEvent deletes an event.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	return s.driver.DeleteEvent(ctx, delete)
}

// ParseStartTime parses the event start time to time.Time.
func (e *Event) ParseStartTime() time.Time {
	return time.Unix(e.StartTs, 0)
}

// ParseEndTime parses the event end time to time.Time.
func (e *Event) ParseEndTime() time.Time {
	return time.Unix(e.EndTs, 0)
}

// Duration returns the length of the event.
func (e *Event) Duration() time.Duration {
	return time.Duration(e.EndTs-e.StartTs) * time.Second
}

// ConflictWith checks whether two events overlap in time.
// Touching endpoints do not conflict.
func (e *Event) ConflictWith(other *Event) bool {
	return e.StartTs < other.EndTs && other.StartTs < e.EndTs
}
