package handler

import (
	"time"

	"github.com/msomdec/credlog/internal/domain"
	"github.com/msomdec/credlog/internal/service"
)

// UserDTO is the JSON representation of a user. Salt and hash are never
// serialized.
type UserDTO struct {
	Username     string `json:"username"`
	RegisteredAt string `json:"registered_at"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		Username:     u.Username,
		RegisteredAt: u.RegisteredAt.Format(time.RFC3339Nano),
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// HistoryDTO is the JSON representation of an audit log entry.
type HistoryDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

func toHistoryDTOs(entries []domain.HistoryEntry) []HistoryDTO {
	dtos := make([]HistoryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = HistoryDTO{
			ID:        e.ID,
			Username:  e.Username,
			Action:    string(e.Action),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
		}
	}
	return dtos
}

// ReportDTO is the JSON representation of a security audit report.
type ReportDTO struct {
	GeneratedAt      string         `json:"generated_at"`
	TotalUsers       int            `json:"total_users"`
	TotalActivities  int            `json:"total_activities"`
	ActivityByAction map[string]int `json:"activity_by_action"`
	Users            []UserDTO      `json:"users"`
	RecentActivities []HistoryDTO   `json:"recent_activities"`
}

func toReportDTO(r *service.Report) ReportDTO {
	byAction := make(map[string]int, len(r.ActivityByAction))
	for action, n := range r.ActivityByAction {
		byAction[string(action)] = n
	}
	return ReportDTO{
		GeneratedAt:      r.GeneratedAt.Format(time.RFC3339Nano),
		TotalUsers:       r.TotalUsers,
		TotalActivities:  r.TotalActivities,
		ActivityByAction: byAction,
		Users:            toUserDTOs(r.Users),
		RecentActivities: toHistoryDTOs(r.RecentActivities),
	}
}
