package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/timepilot/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// Migrate brings the database schema up to date. A fresh database gets
// the full schema; an initialized one is left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		return nil
	}
	slog.Info("initializing database schema", "driver", s.profile.Driver)
	if err := s.driver.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}
