package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// UserPreference represents persisted scheduling preferences.
type UserPreference struct {
	UserID      int32
	Preferences string // JSON string, see SchedulingPreferences
	CreatedTs   int64
	UpdatedTs   int64
}

// FindUserPreference specifies the conditions for finding preferences.
type FindUserPreference struct {
	UserID *int32
}

// UpsertUserPreference specifies the data for upserting preferences.
type UpsertUserPreference struct {
	UserID      int32
	Preferences string
}

// SchedulingPreferences is the JSON payload stored in UserPreference.
type SchedulingPreferences struct {
	Timezone      string          `json:"timezone,omitempty"`
	BufferMinutes int             `json:"buffer_minutes,omitempty"`
	EnergyWeights map[int]float64 `json:"energy_weights,omitempty"`
}

// DecodePreferences parses the stored JSON payload.
func (p *UserPreference) DecodePreferences() (*SchedulingPreferences, error) {
	prefs := &SchedulingPreferences{}
	if p.Preferences == "" {
		return prefs, nil
	}
	if err := json.Unmarshal([]byte(p.Preferences), prefs); err != nil {
		return nil, errors.Wrap(err, "failed to decode scheduling preferences")
	}
	return prefs, nil
}

// Encode serializes the preferences payload to its stored form.
func (p *SchedulingPreferences) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode scheduling preferences")
	}
	return string(raw), nil
}

// UpsertUserPreference creates or replaces the preferences of a user.
func (s *Store) UpsertUserPreference(ctx context.Context, upsert *UpsertUserPreference) (*UserPreference, error) {
	return s.driver.UpsertUserPreference(ctx, upsert)
}

// GetUserPreference returns the preferences of a user, or nil when unset.
func (s *Store) GetUserPreference(ctx context.Context, find *FindUserPreference) (*UserPreference, error) {
	return s.driver.GetUserPreference(ctx, find)
}
