package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/timepilot/store"
)

type preferencePayload struct {
	UserID        int32           `json:"user_id"`
	Timezone      string          `json:"timezone,omitempty"`
	BufferMinutes int             `json:"buffer_minutes,omitempty"`
	EnergyWeights map[int]float64 `json:"energy_weights,omitempty"`
}

func (s *APIV1Service) getUserPreference(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	pref, err := s.Store.GetUserPreference(c.Request().Context(), &store.FindUserPreference{UserID: &userID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load preferences")
	}
	if pref == nil {
		return c.JSON(http.StatusOK, &preferencePayload{UserID: userID})
	}

	prefs, err := pref.DecodePreferences()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to decode preferences")
	}

	return c.JSON(http.StatusOK, &preferencePayload{
		UserID:        userID,
		Timezone:      prefs.Timezone,
		BufferMinutes: prefs.BufferMinutes,
		EnergyWeights: prefs.EnergyWeights,
	})
}

func (s *APIV1Service) upsertUserPreference(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}

	payload := &preferencePayload{}
	if err := c.Bind(payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	for hour, weight := range payload.EnergyWeights {
		if hour < 0 || hour > 23 {
			return echo.NewHTTPError(http.StatusBadRequest, "energy weight hour must be 0-23")
		}
		if weight < 0 || weight > 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "energy weight must be 0-1")
		}
	}

	prefs := &store.SchedulingPreferences{
		Timezone:      payload.Timezone,
		BufferMinutes: payload.BufferMinutes,
		EnergyWeights: payload.EnergyWeights,
	}
	encoded, err := prefs.Encode()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode preferences")
	}

	if _, err := s.Store.UpsertUserPreference(c.Request().Context(), &store.UpsertUserPreference{
		UserID:      userID,
		Preferences: encoded,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save preferences")
	}

	return c.NoContent(http.StatusNoContent)
}

func parseUserID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("userID"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return int32(id), nil
}
