package store

import "context"

// CreateRoutine persists a new routine.
func (s *Store) CreateRoutine(ctx context.Context, create *Routine) (*Routine, error) {
	return s.driver.CreateRoutine(ctx, create)
}

// ListRoutines lists routines matching the given filter, ordered by position.
func (s *Store) ListRoutines(ctx context.Context, find *FindRoutine) ([]*Routine, error) {
	return s.driver.ListRoutines(ctx, find)
}

// GetRoutine returns the first routine matching the given filter, or nil.
func (s *Store) GetRoutine(ctx context.Context, find *FindRoutine) (*Routine, error) {
	return s.driver.GetRoutine(ctx, find)
}

// UpdateRoutine updates a routine's mutable fields.
func (s *Store) UpdateRoutine(ctx context.Context, update *UpdateRoutine) (*Routine, error) {
	return s.driver.UpdateRoutine(ctx, update)
}

// DeleteRoutine removes a routine by UID.
func (s *Store) DeleteRoutine(ctx context.Context, uid string) error {
	return s.driver.DeleteRoutine(ctx, uid)
}
