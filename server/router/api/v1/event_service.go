package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/timepilot/store"
)

type eventPayload struct {
	ID          int32  `json:"id"`
	UID         string `json:"uid"`
	CreatorID   int32  `json:"creator_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Timezone    string `json:"timezone"`
}

type createEventRequest struct {
	CreatorID   int32  `json:"creator_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"` // RFC 3339
	EndTime     string `json:"end_time"`   // RFC 3339
	Timezone    string `json:"timezone"`
}

type updateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Timezone    *string `json:"timezone"`
}

func (s *APIV1Service) listEvents(c echo.Context) error {
	find := &store.FindEvent{}

	if v := c.QueryParam("creator_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid creator_id")
		}
		creatorID := int32(id)
		find.CreatorID = &creatorID
	}
	if v := c.QueryParam("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start time")
		}
		ts := t.Unix()
		find.StartTs = &ts
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end time")
		}
		ts := t.Unix()
		find.EndTs = &ts
	}

	events, err := s.Store.ListEvents(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	payloads := make([]*eventPayload, 0, len(events))
	for _, event := range events {
		payloads = append(payloads, toEventPayload(event))
	}
	return c.JSON(http.StatusOK, payloads)
}

func (s *APIV1Service) createEvent(c echo.Context) error {
	req := &createEventRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start time")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end time")
	}
	if !end.After(start) {
		return echo.NewHTTPError(http.StatusBadRequest, "end time must be after start time")
	}

	tz := req.Timezone
	if tz == "" {
		tz = s.Profile.Timezone
	}

	event, err := s.Store.CreateEvent(c.Request().Context(), &store.Event{
		UID:         shortuuid.New(),
		CreatorID:   req.CreatorID,
		Title:       req.Title,
		Description: req.Description,
		StartTs:     start.Unix(),
		EndTs:       end.Unix(),
		Timezone:    tz,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create event")
	}

	return c.JSON(http.StatusOK, toEventPayload(event))
}

func (s *APIV1Service) updateEvent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	req := &updateEventRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	update := &store.UpdateEvent{
		ID:          int32(id),
		Title:       req.Title,
		Description: req.Description,
		Timezone:    req.Timezone,
	}
	if req.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start time")
		}
		ts := t.Unix()
		update.StartTs = &ts
	}
	if req.EndTime != nil {
		t, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end time")
		}
		ts := t.Unix()
		update.EndTs = &ts
	}

	if err := s.Store.UpdateEvent(c.Request().Context(), update); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update event")
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) deleteEvent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	if err := s.Store.DeleteEvent(c.Request().Context(), &store.DeleteEvent{ID: int32(id)}); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	return c.NoContent(http.StatusNoContent)
}

func toEventPayload(event *store.Event) *eventPayload {
	return &eventPayload{
		ID:          event.ID,
		UID:         event.UID,
		CreatorID:   event.CreatorID,
		Title:       event.Title,
		Description: event.Description,
		StartTime:   time.Unix(event.StartTs, 0).UTC().Format(time.RFC3339),
		EndTime:     time.Unix(event.EndTs, 0).UTC().Format(time.RFC3339),
		Timezone:    event.Timezone,
	}
}
