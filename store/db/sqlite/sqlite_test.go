package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/timepilot/internal/profile"
	"github.com/hrygo/timepilot/store"
)

func newTestDriver(t *testing.T) store.Driver {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "timepilot_test.db"),
	}
	driver, err := NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	require.NoError(t, driver.Migrate(context.Background()))
	return driver
}

func TestMigrateAndIsInitialized(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	initialized, err := driver.IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)

	// Migrating twice is harmless.
	require.NoError(t, driver.Migrate(ctx))
}

func TestEventCRUD(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	created, err := driver.CreateEvent(ctx, &store.Event{
		UID:       "evt-1",
		CreatorID: 1,
		Title:     "产品评审",
		StartTs:   start.Unix(),
		EndTs:     start.Add(time.Hour).Unix(),
		Timezone:  "Asia/Shanghai",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedTs)

	list, err := driver.ListEvents(ctx, &store.FindEvent{UID: &created.UID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "产品评审", list[0].Title)

	newTitle := "架构评审"
	require.NoError(t, driver.UpdateEvent(ctx, &store.UpdateEvent{ID: created.ID, Title: &newTitle}))

	list, err = driver.ListEvents(ctx, &store.FindEvent{ID: &created.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, newTitle, list[0].Title)

	require.NoError(t, driver.DeleteEvent(ctx, &store.DeleteEvent{ID: created.ID}))
	err = driver.DeleteEvent(ctx, &store.DeleteEvent{ID: created.ID})
	assert.Error(t, err, "deleting a missing event fails")
}

func TestListEvents_OverlapQuery(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	events := []struct {
		uid        string
		start, end int
	}{
		{"before", 6, 7},
		{"touching-start", 7, 8},
		{"inside", 9, 10},
		{"spanning", 7, 19},
		{"touching-end", 18, 19},
		{"after", 20, 21},
	}
	for _, e := range events {
		_, err := driver.CreateEvent(ctx, &store.Event{
			UID:       e.uid,
			CreatorID: 1,
			Title:     e.uid,
			StartTs:   base.Add(time.Duration(e.start) * time.Hour).Unix(),
			EndTs:     base.Add(time.Duration(e.end) * time.Hour).Unix(),
		})
		require.NoError(t, err)
	}

	// Query the window [8:00, 18:00).
	creatorID := int32(1)
	windowStart := base.Add(8 * time.Hour).Unix()
	windowEnd := base.Add(18 * time.Hour).Unix()
	list, err := driver.ListEvents(ctx, &store.FindEvent{
		CreatorID: &creatorID,
		StartTs:   &windowStart,
		EndTs:     &windowEnd,
	})
	require.NoError(t, err)

	uids := make([]string, 0, len(list))
	for _, e := range list {
		uids = append(uids, e.UID)
	}
	assert.ElementsMatch(t, []string{"inside", "spanning"}, uids,
		"touching endpoints do not overlap a half-open window")
}

func TestUserPreferenceUpsert(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	userID := int32(7)
	missing, err := driver.GetUserPreference(ctx, &store.FindUserPreference{UserID: &userID})
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := driver.UpsertUserPreference(ctx, &store.UpsertUserPreference{
		UserID:      userID,
		Preferences: `{"buffer_minutes":15}`,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"buffer_minutes":15}`, first.Preferences)

	second, err := driver.UpsertUserPreference(ctx, &store.UpsertUserPreference{
		UserID:      userID,
		Preferences: `{"buffer_minutes":45}`,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"buffer_minutes":45}`, second.Preferences)

	got, err := driver.GetUserPreference(ctx, &store.FindUserPreference{UserID: &userID})
	require.NoError(t, err)
	require.NotNil(t, got)

	prefs, err := got.DecodePreferences()
	require.NoError(t, err)
	assert.Equal(t, 45, prefs.BufferMinutes)
}
