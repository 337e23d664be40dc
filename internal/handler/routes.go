package handler

import (
	"net/http"

	"github.com/msomdec/credlog/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. metrics may be
// nil to leave /metrics unmounted.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, audit *service.AuditService, metrics http.Handler) {
	authHandler := NewAuthHandler(auth)
	adminHandler := NewAdminHandler(audit)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /register", authHandler.HandleRegister)
	mux.HandleFunc("POST /login", authHandler.HandleLogin)

	mux.HandleFunc("GET /users", adminHandler.HandleListUsers)
	mux.HandleFunc("DELETE /users/{username}", adminHandler.HandleDeleteUser)
	mux.HandleFunc("GET /history", adminHandler.HandleListHistory)
	mux.HandleFunc("GET /export/users", adminHandler.HandleExportUsers)
	mux.HandleFunc("GET /export/history", adminHandler.HandleExportHistory)
	mux.HandleFunc("GET /report", adminHandler.HandleReport)

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

// Wrap applies the standard middleware chain around h.
func Wrap(h http.Handler, corsOrigin string) http.Handler {
	return RequestID(AccessLog(SecurityHeaders(CORS(corsOrigin, h))))
}
