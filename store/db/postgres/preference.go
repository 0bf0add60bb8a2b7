package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hrygo/timepilot/store"
)

func (d *DB) UpsertUserPreference(ctx context.Context, upsert *store.UpsertUserPreference) (*store.UserPreference, error) {
	stmt := `
		INSERT INTO user_preference (user_id, preferences, updated_ts)
		VALUES ($1, $2, EXTRACT(EPOCH FROM NOW()))
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			updated_ts = EXTRACT(EPOCH FROM NOW())
		RETURNING user_id, preferences, created_ts, updated_ts`

	pref := &store.UserPreference{}
	if err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.Preferences).Scan(
		&pref.UserID,
		&pref.Preferences,
		&pref.CreatedTs,
		&pref.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert user preference: %w", err)
	}

	return pref, nil
}

func (d *DB) GetUserPreference(ctx context.Context, find *store.FindUserPreference) (*store.UserPreference, error) {
	if find.UserID == nil {
		return nil, fmt.Errorf("user id is required")
	}

	query := `
		SELECT user_id, preferences, created_ts, updated_ts
		FROM user_preference
		WHERE user_id = $1`

	pref := &store.UserPreference{}
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&pref.UserID,
		&pref.Preferences,
		&pref.CreatedTs,
		&pref.UpdatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user preference: %w", err)
	}

	return pref, nil
}
