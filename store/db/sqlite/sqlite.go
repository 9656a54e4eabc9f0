// Package sqlite implements store.Driver on SQLite. It is the default
// backend; a single file next to the binary is all a small deployment needs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	// SQLite driver.
	_ "modernc.org/sqlite"
)

// DB is the SQLite implementation of store.Driver.
type DB struct {
	db *sql.DB
}

// NewDB opens the database at dsn, a file path.
func NewDB(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}
	db, err := sql.Open("sqlite", dsn+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite db %s", dsn)
	}
	return &DB{db: db}, nil
}

// GetDB returns the underlying handle.
func (d *DB) GetDB() *sql.DB {
	return d.db
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates any missing tables.
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.EnsureUserTables(ctx); err != nil {
		return err
	}
	if err := d.EnsureProfileTables(ctx); err != nil {
		return err
	}
	if err := d.EnsureRoutineTables(ctx); err != nil {
		return err
	}
	return d.EnsureCheckInTables(ctx)
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}
