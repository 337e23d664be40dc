package domain

import (
	"context"
	"time"
)

// User is a registered identity. Salt and PasswordHash are written once at
// registration and never change.
type User struct {
	Username     string
	Salt         string
	PasswordHash string
	RegisteredAt time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
	// Create inserts the user and sets RegisteredAt. It returns
	// ErrDuplicateUsername when the storage engine rejects the primary key.
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// Delete removes the user row only. History entries are kept.
	Delete(ctx context.Context, username string) error
	Count(ctx context.Context) (int, error)
}
