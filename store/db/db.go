// Package db selects the concrete store driver from the profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/timepilot/internal/profile"
	"github.com/hrygo/timepilot/store"
	"github.com/hrygo/timepilot/store/db/postgres"
	"github.com/hrygo/timepilot/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// SQLite serves development and single-user setups; PostgreSQL serves
// shared deployments. No other engines are supported.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
