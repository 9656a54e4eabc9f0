// Package store is the storage facade the server builds on. Services talk to
// *Store; the SQL lives in the per-dialect drivers under store/db and is
// reached through the Driver interface.
package store

import "context"

// Store wraps a Driver with the app-level storage API.
type Store struct {
	driver Driver
}

// New creates a Store over the given driver.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// Migrate creates any missing tables. Safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.driver.Close()
}
