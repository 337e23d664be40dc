package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/msomdec/credlog/internal/dbx"
	"github.com/msomdec/credlog/internal/domain"
	"github.com/msomdec/credlog/internal/repository/sqlite/migrations"
)

// DB wraps a SQLite connection and implements domain.CredentialStore.
type DB struct {
	SqlDB *sql.DB
	now   func() time.Time
}

// Option customizes a DB.
type Option func(*DB)

// WithClock overrides the clock used for registered_at and history
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *DB) { d.now = now }
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string, opts ...Option) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// A single connection serializes writers; the primary key still decides
	// who wins a duplicate registration.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{SqlDB: db, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() domain.UserRepository {
	return NewUserRepository(d)
}

func (d *DB) History() domain.HistoryRepository {
	return NewHistoryRepository(d)
}

func (d *DB) clock() func() time.Time {
	if d.now == nil {
		return time.Now
	}
	return d.now
}

func (d *DB) InTx(ctx context.Context, fn func(users domain.UserRepository, history domain.HistoryRepository) error) error {
	var fnErr error
	err := dbx.WithTx(ctx, d.SqlDB, func(tx dbx.DBTX) error {
		fnErr = fn(&UserRepository{db: tx, now: d.clock()}, &HistoryRepository{db: tx, now: d.clock()})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return fault("transaction", err)
	}
	return err
}
