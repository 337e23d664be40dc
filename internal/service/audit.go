package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/msomdec/credlog/internal/domain"
)

// RecentActivityLimit is how many history entries a report includes.
const RecentActivityLimit = 10

// Report is a point-in-time summary of users and audit activity.
type Report struct {
	GeneratedAt      time.Time
	TotalUsers       int
	TotalActivities  int
	ActivityByAction map[domain.Action]int
	Users            []domain.User
	// RecentActivities holds the newest entries, newest first.
	RecentActivities []domain.HistoryEntry
}

// AuditService serves the administrative and reporting reads over the
// credential store.
type AuditService struct {
	store domain.CredentialStore
	now   func() time.Time
}

// NewAuditService creates a new AuditService.
func NewAuditService(store domain.CredentialStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

func (s *AuditService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user record. Its history entries are kept.
func (s *AuditService) DeleteUser(ctx context.Context, username string) error {
	if err := s.store.Users().Delete(ctx, username); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.Info("user deleted", "username", username)
	return nil
}

func (s *AuditService) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := s.store.History().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Report reads every figure inside one transaction so the counts and the
// recent window agree with each other.
func (s *AuditService) Report(ctx context.Context) (*Report, error) {
	report := &Report{GeneratedAt: s.now().UTC()}

	err := s.store.InTx(ctx, func(users domain.UserRepository, history domain.HistoryRepository) error {
		var err error
		if report.Users, err = users.List(ctx); err != nil {
			return err
		}
		if report.TotalActivities, err = history.Count(ctx); err != nil {
			return err
		}
		if report.ActivityByAction, err = history.CountByAction(ctx); err != nil {
			return err
		}
		report.RecentActivities, err = history.Recent(ctx, RecentActivityLimit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	report.TotalUsers = len(report.Users)
	return report, nil
}

// ExportUsersCSV writes every user as CSV with a header row. The salt and
// hash columns are included so the export can seed another instance.
func (s *AuditService) ExportUsersCSV(ctx context.Context, w io.Writer) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"username", "salt", "hashed_password", "registered_at"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, u := range users {
		if err := cw.Write([]string{u.Username, u.Salt, u.PasswordHash, u.RegisteredAt.Format(time.RFC3339Nano)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportHistoryCSV writes the audit log, newest first, as CSV.
func (s *AuditService) ExportHistoryCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.ListHistory(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"username", "action", "timestamp"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Username, string(e.Action), e.Timestamp.Format(time.RFC3339Nano)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
