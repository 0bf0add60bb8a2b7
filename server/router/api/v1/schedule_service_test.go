package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timepilot/internal/profile"
	"github.com/hrygo/timepilot/store"
	"github.com/hrygo/timepilot/store/db/sqlite"
)

func newTestAPI(t *testing.T) (*APIV1Service, *echo.Echo) {
	t.Helper()

	p := &profile.Profile{
		Mode:               "dev",
		Driver:             "sqlite",
		DSN:                filepath.Join(t.TempDir(), "timepilot_test.db"),
		Timezone:           "UTC",
		BufferMinutes:      30,
		GranularityMinutes: 30,
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))

	svc := NewAPIV1Service(p, st)
	e := echo.New()
	svc.RegisterRoutes(e)
	return svc, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResolveSchedule_Scheduled(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/schedule/resolve",
		`{"calendar_id": "1", "text": "明天下午2点到4点开会", "save": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp resolveScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "scheduled", resp.Status)
	require.NotNil(t, resp.Slot)
	assert.Equal(t, "开会", resp.Slot.Title)
	assert.NotZero(t, resp.Slot.EventID, "save=true persists the event")

	// The saved event now blocks an identical request.
	rec = doJSON(e, http.MethodPost, "/api/v1/schedule/resolve",
		`{"calendar_id": "1", "text": "明天下午2点到4点开会"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
	require.NotNil(t, resp.Failure)
	assert.Equal(t, "no_free_slot", resp.Failure.Reason)
}

func TestResolveSchedule_NeedsClarification(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/schedule/resolve",
		`{"calendar_id": "1", "text": "帮我安排一下"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp resolveScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "needs_clarification", resp.Status)
	assert.NotEmpty(t, resp.Hint)
}

func TestResolveSchedule_Validation(t *testing.T) {
	_, e := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing text", `{"calendar_id": "1"}`},
		{"missing calendar", `{"text": "明天开会"}`},
		{"oversized text", `{"calendar_id": "1", "text": "` + strings.Repeat("a", 600) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/v1/schedule/resolve", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestEventEndpoints(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/events",
		`{"creator_id": 1, "title": "面试", "start_time": "2030-03-02T14:00:00Z", "end_time": "2030-03-02T15:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created eventPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.UID)

	rec = doJSON(e, http.MethodGet, "/api/v1/events?creator_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []eventPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "面试", list[0].Title)

	rec = doJSON(e, http.MethodDelete, "/api/v1/events/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/events",
		`{"creator_id": 1, "title": "bad", "start_time": "2030-03-02T15:00:00Z", "end_time": "2030-03-02T14:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "end before start is rejected")
}

func TestPreferenceEndpoints(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(e, http.MethodPut, "/api/v1/users/1/preferences",
		`{"buffer_minutes": 15, "energy_weights": {"9": 0.9, "15": 0.3}}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/api/v1/users/1/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pref preferencePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pref))
	assert.Equal(t, 15, pref.BufferMinutes)
	assert.InDelta(t, 0.9, pref.EnergyWeights[9], 1e-9)

	rec = doJSON(e, http.MethodPut, "/api/v1/users/1/preferences",
		`{"energy_weights": {"25": 0.5}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "hour out of range is rejected")
}
