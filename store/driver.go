package store

import (
	"context"
	"database/sql"
)

// Driver is the contract every database dialect implements.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	// Migrate creates missing tables. Every statement is idempotent.
	Migrate(ctx context.Context) error

	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	GetUser(ctx context.Context, find *FindUser) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)

	UpsertProfile(ctx context.Context, upsert *Profile) (*Profile, error)
	GetProfile(ctx context.Context, find *FindProfile) (*Profile, error)

	CreateRoutine(ctx context.Context, create *Routine) (*Routine, error)
	ListRoutines(ctx context.Context, find *FindRoutine) ([]*Routine, error)
	GetRoutine(ctx context.Context, find *FindRoutine) (*Routine, error)
	UpdateRoutine(ctx context.Context, update *UpdateRoutine) (*Routine, error)
	DeleteRoutine(ctx context.Context, uid string) error

	UpsertCheckIn(ctx context.Context, upsert *CheckIn) (*CheckIn, error)
	ListCheckIns(ctx context.Context, find *FindCheckIn) ([]*CheckIn, error)
	GetCheckIn(ctx context.Context, find *FindCheckIn) (*CheckIn, error)
}
