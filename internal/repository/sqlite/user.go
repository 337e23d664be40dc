package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/msomdec/credlog/internal/dbx"
	"github.com/msomdec/credlog/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB, now: db.clock()}
}

func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fault("query user exists", err)
	}
	return exists, nil
}

// Create inserts the user. The username primary key rejects duplicates
// atomically; there is no separate existence check.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, salt, hashed_password, registered_at)
		 VALUES (?, ?, ?, ?)`,
		user.Username, user.Salt, user.PasswordHash, formatTime(now),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateUsername
		}
		return fault("insert user", err)
	}

	user.RegisteredAt = now
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT username, salt, hashed_password, registered_at
		 FROM users WHERE username = ?`, username,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fault("query user by username", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, salt, hashed_password, registered_at
		 FROM users ORDER BY registered_at, username`,
	)
	if err != nil {
		return nil, fault("list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fault("scan user", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate users", err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fault("delete user", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fault("delete user rows affected", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fault("count users", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		user         domain.User
		registeredAt string
	)
	if err := s.Scan(&user.Username, &user.Salt, &user.PasswordHash, &registeredAt); err != nil {
		return nil, err
	}
	t, err := parseTime(registeredAt)
	if err != nil {
		return nil, err
	}
	user.RegisteredAt = t
	return &user, nil
}
