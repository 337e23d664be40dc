package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/credlog/internal/domain"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServerError logs err and answers 503 for storage faults, 500 otherwise.
func writeServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op, "error", err, "request_id", RequestIDFromContext(r.Context()))
	if errors.Is(err, domain.ErrStorageUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "Storage is temporarily unavailable.")
		return
	}
	writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
}

// readJSON decodes the request body into the given destination.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}
