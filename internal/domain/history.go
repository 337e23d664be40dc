package domain

import (
	"context"
	"time"
)

// Action is the kind of an audited event.
type Action string

const (
	ActionRegister Action = "register"
	ActionLogin    Action = "login"
)

// HistoryEntry is one immutable row of the audit log. Username is stored by
// value and may refer to a user that no longer exists.
type HistoryEntry struct {
	ID        int64
	Username  string
	Action    Action
	Timestamp time.Time
}

// HistoryRepository is the append-only audit log. There is no update or
// delete. Reads are ordered newest first (timestamp, then ID, descending).
type HistoryRepository interface {
	Append(ctx context.Context, username string, action Action) (*HistoryEntry, error)
	List(ctx context.Context) ([]HistoryEntry, error)
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
	Count(ctx context.Context) (int, error)
	CountByAction(ctx context.Context) (map[Action]int, error)
}
