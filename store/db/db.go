// Package db selects the concrete store driver for a profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/useattune/attune/server/profile"
	"github.com/useattune/attune/store"
	"github.com/useattune/attune/store/db/mysql"
	"github.com/useattune/attune/store/db/postgres"
	"github.com/useattune/attune/store/db/sqlite"
)

// NewDriver opens the database backend named by the profile.
func NewDriver(p *profile.Profile) (store.Driver, error) {
	switch p.Driver {
	case "sqlite":
		return sqlite.NewDB(p.DSN)
	case "mysql":
		return mysql.NewDB(p.DSN)
	case "postgres":
		return postgres.NewDB(p.DSN)
	default:
		return nil, errors.Errorf("unknown db driver %q", p.Driver)
	}
}
