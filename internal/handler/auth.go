package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/credlog/internal/domain"
	"github.com/msomdec/credlog/internal/service"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister processes a JSON registration request.
// POST /register
// Request:  {"username":"...","password":"..."}
// Response: 201 {"message":"...","username":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUsername):
			writeError(w, http.StatusConflict, "User already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeServerError(w, r, "register user", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "User registered successfully",
		"username": user.Username,
		"user":     toUserDTO(user),
	})
}

// HandleLogin processes a JSON login request.
// POST /login
// Request:  {"username":"...","password":"..."}
// Response: 200 {"message":"...","username":"..."} or 401
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServerError(w, r, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"username": user.Username,
	})
}
