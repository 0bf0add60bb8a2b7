package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/timepilot/server/service/resolver"
	"github.com/hrygo/timepilot/server/timezone"
)

type resolveScheduleRequest struct {
	CalendarID string `json:"calendar_id"`
	Text       string `json:"text"`
	// Save persists the resolved slot as an event.
	Save bool `json:"save"`
}

type slotPayload struct {
	Title     string  `json:"title"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Display   string  `json:"display"`
	Score     float64 `json:"score"`
	EventID   int32   `json:"event_id,omitempty"`
}

type failurePayload struct {
	Reason            string `json:"reason"`
	DurationMinutes   int    `json:"duration_minutes"`
	WindowStart       string `json:"window_start"`
	WindowEnd         string `json:"window_end"`
	LargestGapMinutes int    `json:"largest_gap_minutes"`
}

type resolveScheduleResponse struct {
	Status  string          `json:"status"` // scheduled, failed, needs_clarification
	Slot    *slotPayload    `json:"slot,omitempty"`
	Failure *failurePayload `json:"failure,omitempty"`
	Hint    string          `json:"hint,omitempty"`
}

const maxRequestTextLength = 500

func (s *APIV1Service) resolveSchedule(c echo.Context) error {
	req := &resolveScheduleRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	if len(req.Text) > maxRequestTextLength {
		return echo.NewHTTPError(http.StatusBadRequest, "text too long")
	}
	if req.CalendarID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "calendar_id is required")
	}

	ctx := c.Request().Context()
	if err := s.resolveSemaphore.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server busy")
	}
	defer s.resolveSemaphore.Release(1)

	requestID := uuid.NewString()
	started := time.Now()

	energy, err := s.Calendar.EnergyProfile(ctx, req.CalendarID)
	if err != nil {
		slog.Error("failed to load energy profile", "request_id", requestID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load preferences")
	}

	outcome, err := s.Resolver.Resolve(ctx, resolver.Request{
		CalendarID: req.CalendarID,
		Text:       req.Text,
		Energy:     energy,
	})
	if err != nil {
		slog.Error("failed to resolve schedule", "request_id", requestID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve schedule")
	}

	slog.Info("schedule resolved",
		"request_id", requestID,
		"calendar_id", req.CalendarID,
		"duration", time.Since(started),
	)

	switch result := outcome.(type) {
	case resolver.ScheduledSlot:
		payload := &slotPayload{
			Title:     result.Title,
			StartTime: result.Start.Format(time.RFC3339),
			EndTime:   result.End.Format(time.RFC3339),
			Display:   timezone.FormatSlotTime(result.Start, result.End, result.Start.Location()),
			Score:     result.Score,
		}
		if req.Save {
			event, err := s.Calendar.RecordSlot(ctx, req.CalendarID, result.Title, result.Start, result.End)
			if err != nil {
				slog.Error("failed to save resolved slot", "request_id", requestID, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to save event")
			}
			payload.EventID = event.ID
		}
		return c.JSON(http.StatusOK, &resolveScheduleResponse{Status: "scheduled", Slot: payload})

	case resolver.ResolutionFailure:
		return c.JSON(http.StatusOK, &resolveScheduleResponse{
			Status: "failed",
			Failure: &failurePayload{
				Reason:            string(result.Reason),
				DurationMinutes:   result.DurationMinutes,
				WindowStart:       result.Window.Start.Format(time.RFC3339),
				WindowEnd:         result.Window.End.Format(time.RFC3339),
				LargestGapMinutes: result.LargestGapMinutes,
			},
		})

	case resolver.NeedsClarification:
		return c.JSON(http.StatusOK, &resolveScheduleResponse{
			Status: "needs_clarification",
			Hint:   result.Hint,
		})

	default:
		slog.Error("unknown resolver outcome", "request_id", requestID)
		return echo.NewHTTPError(http.StatusInternalServerError, "unknown outcome")
	}
}
