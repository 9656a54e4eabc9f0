package store

// User is an account. PasswordHash is a bcrypt hash, never the password.
type User struct {
	ID           int32
	Email        string
	Nickname     string
	PasswordHash string
	CreatedTs    int64
	UpdatedTs    int64
}

// FindUser filters for ListUsers and GetUser.
type FindUser struct {
	ID    *int32
	Email *string
}

// UpdateUser carries fields accepted by UpdateUser.
type UpdateUser struct {
	ID           int32
	Nickname     *string
	PasswordHash *string
}
