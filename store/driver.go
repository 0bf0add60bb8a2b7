package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// Event model related methods.
	CreateEvent(ctx context.Context, create *Event) (*Event, error)
	ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error)
	UpdateEvent(ctx context.Context, update *UpdateEvent) error
	DeleteEvent(ctx context.Context, delete *DeleteEvent) error

	// UserPreference model related methods.
	UpsertUserPreference(ctx context.Context, upsert *UpsertUserPreference) (*UserPreference, error)
	GetUserPreference(ctx context.Context, find *FindUserPreference) (*UserPreference, error)
}
