// Package postgres implements domain.CredentialStore on PostgreSQL through
// the pgx database/sql driver. Migrations are applied with goose.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/msomdec/credlog/internal/dbx"
	"github.com/msomdec/credlog/internal/domain"
	"github.com/msomdec/credlog/internal/repository/postgres/migrations"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

// DB wraps a PostgreSQL connection pool and implements domain.CredentialStore.
type DB struct {
	SqlDB *sql.DB
	now   func() time.Time
}

type Option func(*DB)

// WithClock overrides the clock used for registered_at and history
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *DB) { d.now = now }
}

// New opens a pool for dsn and verifies connectivity.
func New(ctx context.Context, dsn string, opts ...Option) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return Wrap(db, opts...), nil
}

// Wrap builds a DB around an existing pool.
func Wrap(db *sql.DB, opts ...Option) *DB {
	d := &DB{SqlDB: db, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (d *DB) Migrate(ctx context.Context) error {
	if err := gooseUp(ctx, d.SqlDB); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() domain.UserRepository {
	return &UserRepository{db: d.SqlDB, now: d.now}
}

func (d *DB) History() domain.HistoryRepository {
	return &HistoryRepository{db: d.SqlDB, now: d.now}
}

func (d *DB) InTx(ctx context.Context, fn func(users domain.UserRepository, history domain.HistoryRepository) error) error {
	var fnErr error
	err := dbx.WithTx(ctx, d.SqlDB, func(tx dbx.DBTX) error {
		fnErr = fn(&UserRepository{db: tx, now: d.now}, &HistoryRepository{db: tx, now: d.now})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return fault("transaction", err)
	}
	return err
}

func fault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
