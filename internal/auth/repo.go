package auth

import "context"

// Repository defines the credential store consumed by the auth core.
// Implementations return shared.ErrNotFound for absent principals and
// shared.ErrConflict when an email is already taken.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, user NewUser) (*User, error)
}
