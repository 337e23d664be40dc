package postgres

import (
	"context"
	"time"

	"github.com/msomdec/credlog/internal/dbx"
	"github.com/msomdec/credlog/internal/domain"
)

type HistoryRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func (r *HistoryRepository) Append(ctx context.Context, username string, action domain.Action) (*domain.HistoryEntry, error) {
	entry := &domain.HistoryEntry{
		Username:  username,
		Action:    action,
		Timestamp: r.now().UTC(),
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO history (username, action, timestamp) VALUES ($1, $2, $3) RETURNING id`,
		username, string(action), entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fault("insert history", err)
	}
	return entry, nil
}

func (r *HistoryRepository) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	return r.query(ctx,
		`SELECT id, username, action, timestamp FROM history
		 ORDER BY timestamp DESC, id DESC`)
}

func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return r.query(ctx,
		`SELECT id, username, action, timestamp FROM history
		 ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
}

func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fault("count history", err)
	}
	return n, nil
}

func (r *HistoryRepository) CountByAction(ctx context.Context) (map[domain.Action]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT action, COUNT(*) FROM history GROUP BY action`)
	if err != nil {
		return nil, fault("count history by action", err)
	}
	defer rows.Close()

	counts := make(map[domain.Action]int)
	for rows.Next() {
		var (
			action string
			n      int
		)
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fault("scan action count", err)
		}
		counts[domain.Action(action)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate action counts", err)
	}
	return counts, nil
}

func (r *HistoryRepository) query(ctx context.Context, query string, args ...any) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fault("query history", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Timestamp); err != nil {
			return nil, fault("scan history", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("iterate history", err)
	}
	return entries, nil
}
