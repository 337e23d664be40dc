package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/msomdec/credlog/internal/domain"
	"github.com/msomdec/credlog/internal/service"
)

// AdminHandler serves user management, history and reporting requests.
type AdminHandler struct {
	audit *service.AuditService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(audit *service.AuditService) *AdminHandler {
	return &AdminHandler{audit: audit}
}

// HandleListUsers returns every registered user.
// GET /users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.audit.ListUsers(r.Context())
	if err != nil {
		writeServerError(w, r, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": toUserDTOs(users)})
}

// HandleDeleteUser removes a user. History is kept.
// DELETE /users/{username}
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if err := h.audit.DeleteUser(r.Context(), username); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeServerError(w, r, "delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User " + username + " deleted"})
}

// HandleListHistory returns the audit log, newest first.
// GET /history
func (h *AdminHandler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.ListHistory(r.Context())
	if err != nil {
		writeServerError(w, r, "list history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": toHistoryDTOs(entries)})
}

// HandleReport returns the security audit report.
// GET /report
func (h *AdminHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.audit.Report(r.Context())
	if err != nil {
		writeServerError(w, r, "generate report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// HandleExportUsers downloads users as CSV.
// GET /export/users
func (h *AdminHandler) HandleExportUsers(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, "users.csv", h.audit.ExportUsersCSV)
}

// HandleExportHistory downloads the audit log as CSV.
// GET /export/history
func (h *AdminHandler) HandleExportHistory(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, "history.csv", h.audit.ExportHistoryCSV)
}

// writeCSV renders into a buffer first so a failure can still produce a
// proper error status.
func (h *AdminHandler) writeCSV(w http.ResponseWriter, r *http.Request, filename string, export func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := export(r.Context(), &buf); err != nil {
		writeServerError(w, r, "export "+filename, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
