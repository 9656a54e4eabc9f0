package store

import "context"

// UpsertCheckIn writes the entry for one day, replacing the values of an
// existing row for the same (creator, date).
func (s *Store) UpsertCheckIn(ctx context.Context, upsert *CheckIn) (*CheckIn, error) {
	return s.driver.UpsertCheckIn(ctx, upsert)
}

// ListCheckIns lists entries matching the given filter, newest date first.
func (s *Store) ListCheckIns(ctx context.Context, find *FindCheckIn) ([]*CheckIn, error) {
	return s.driver.ListCheckIns(ctx, find)
}

// GetCheckIn returns the first entry matching the given filter, or nil.
func (s *Store) GetCheckIn(ctx context.Context, find *FindCheckIn) (*CheckIn, error) {
	return s.driver.GetCheckIn(ctx, find)
}
