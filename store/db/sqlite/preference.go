package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/timepilot/store"
)

func (d *DB) UpsertUserPreference(ctx context.Context, upsert *store.UpsertUserPreference) (*store.UserPreference, error) {
	stmt := `
		INSERT INTO user_preference (user_id, preferences, updated_ts)
		VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = excluded.preferences,
			updated_ts = strftime('%s', 'now')
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
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}

	query := `
		SELECT user_id, preferences, created_ts, updated_ts
		FROM user_preference
		WHERE ` + strings.Join(where, " AND ")

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user preference: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate user preference: %w", err)
		}
		return nil, nil
	}

	pref := &store.UserPreference{}
	if err := rows.Scan(&pref.UserID, &pref.Preferences, &pref.CreatedTs, &pref.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to scan user preference: %w", err)
	}

	return pref, nil
}
