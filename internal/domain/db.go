package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (SQLite, Postgres) owns its own migration files and
// strategy, so the whole backend is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// CredentialStore is the sole owner of durable state: user records and the
// audit log.
type CredentialStore interface {
	Database
	Users() UserRepository
	History() HistoryRepository
	// InTx runs fn against repositories bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(users UserRepository, history HistoryRepository) error) error
}
