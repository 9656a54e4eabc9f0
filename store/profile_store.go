package store

import "context"

// UpsertProfile writes the whole profile row, creating it on first save.
func (s *Store) UpsertProfile(ctx context.Context, upsert *Profile) (*Profile, error) {
	return s.driver.UpsertProfile(ctx, upsert)
}

// GetProfile returns the user's profile, or nil when onboarding never ran.
func (s *Store) GetProfile(ctx context.Context, find *FindProfile) (*Profile, error) {
	return s.driver.GetProfile(ctx, find)
}
