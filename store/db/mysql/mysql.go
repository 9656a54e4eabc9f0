// Package mysql implements store.Driver on MySQL.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	// MySQL driver.
	_ "github.com/go-sql-driver/mysql"
)

// DB is the MySQL implementation of store.Driver.
type DB struct {
	db *sql.DB
}

// NewDB opens a connection for the given DSN, e.g.
// "user:pass@tcp(host:3306)/attune".
func NewDB(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql db")
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
