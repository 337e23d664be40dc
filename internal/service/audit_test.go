package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/credlog/internal/domain"
	"github.com/msomdec/credlog/internal/repository/sqlite"
	"github.com/msomdec/credlog/internal/service"
)

func TestAuditService_DeleteKeepsHistory(t *testing.T) {
	auth, db, _ := newTestAuthService(t)
	audit := service.NewAuditService(db)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "secret123")
	require.NoError(t, err)
	_, err = auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, audit.DeleteUser(ctx, "alice"))

	users, err := audit.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	history, err := audit.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, e := range history {
		assert.Equal(t, "alice", e.Username)
	}
}

func TestAuditService_DeleteUnknown(t *testing.T) {
	db := newTestDB(t)
	audit := service.NewAuditService(db)

	err := audit.DeleteUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuditService_Report(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	db := newTestDB(t, sqlite.WithClock(stepClock(base)))
	audit := service.NewAuditService(db)
	generated := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	service.SetClockForTest(audit, func() time.Time { return generated })
	ctx := context.Background()

	require.NoError(t, db.Users().Create(ctx, &domain.User{Username: "alice", Salt: "s", PasswordHash: "h"}))
	for i := range 12 {
		action := domain.ActionLogin
		if i == 0 {
			action = domain.ActionRegister
		}
		_, err := db.History().Append(ctx, fmt.Sprintf("u%02d", i), action)
		require.NoError(t, err)
	}

	report, err := audit.Report(ctx)
	require.NoError(t, err)

	assert.Equal(t, generated, report.GeneratedAt)
	assert.Equal(t, 1, report.TotalUsers)
	assert.Equal(t, 12, report.TotalActivities)
	assert.Equal(t, map[domain.Action]int{domain.ActionRegister: 1, domain.ActionLogin: 11}, report.ActivityByAction)
	require.Len(t, report.RecentActivities, service.RecentActivityLimit)

	var names []string
	for _, e := range report.RecentActivities {
		names = append(names, e.Username)
	}
	assert.Equal(t, []string{"u11", "u10", "u09", "u08", "u07", "u06", "u05", "u04", "u03", "u02"}, names)
}

func TestAuditService_Report_FewerThanLimit(t *testing.T) {
	db := newTestDB(t)
	audit := service.NewAuditService(db)
	ctx := context.Background()

	for range 3 {
		_, err := db.History().Append(ctx, "bob", domain.ActionLogin)
		require.NoError(t, err)
	}

	report, err := audit.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalActivities)
	assert.Len(t, report.RecentActivities, 3)
	assert.Equal(t, 0, report.TotalUsers)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestAuditService_ExportUsersCSV(t *testing.T) {
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	db := newTestDB(t, sqlite.WithClock(stepClock(base)))
	audit := service.NewAuditService(db)
	ctx := context.Background()

	require.NoError(t, db.Users().Create(ctx, &domain.User{Username: "alice", Salt: "s1", PasswordHash: "h1"}))
	require.NoError(t, db.Users().Create(ctx, &domain.User{Username: "bob,jr", Salt: "s2", PasswordHash: "h2"}))

	var buf bytes.Buffer
	require.NoError(t, audit.ExportUsersCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"username", "salt", "hashed_password", "registered_at"},
		{"alice", "s1", "h1", "2026-04-01T00:00:00Z"},
		{"bob,jr", "s2", "h2", "2026-04-01T00:00:01Z"},
	}, records)
}

func TestAuditService_ExportHistoryCSV(t *testing.T) {
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	db := newTestDB(t, sqlite.WithClock(stepClock(base)))
	audit := service.NewAuditService(db)
	ctx := context.Background()

	_, err := db.History().Append(ctx, "alice", domain.ActionRegister)
	require.NoError(t, err)
	_, err = db.History().Append(ctx, "alice", domain.ActionLogin)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, audit.ExportHistoryCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"username", "action", "timestamp"},
		{"alice", "login", "2026-04-01T00:00:01Z"},
		{"alice", "register", "2026-04-01T00:00:00Z"},
	}, records)
}

func TestAuditService_StorageFaultPropagates(t *testing.T) {
	db := newTestDB(t)
	audit := service.NewAuditService(db)
	db.Close()

	_, err := audit.ListUsers(context.Background())
	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable), "got %v", err)

	_, err = audit.Report(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
