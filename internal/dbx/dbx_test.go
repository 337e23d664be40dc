package dbx_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/msomdec/credlog/internal/dbx"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "dbx.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE events (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countEvents(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n))
	return n
}

func TestWithTx_Commit(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, func(tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO events (name) VALUES ('a')`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO events (name) VALUES ('b')`)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, countEvents(t, db))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := dbx.WithTx(ctx, db, func(tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO events (name) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countEvents(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = dbx.WithTx(ctx, db, func(tx dbx.DBTX) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO events (name) VALUES ('a')`); err != nil {
				return err
			}
			panic("kaboom")
		})
	})
	assert.Equal(t, 0, countEvents(t, db))
}
