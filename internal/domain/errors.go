package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrStorageUnavailable marks faults in the persistence layer (I/O errors,
	// lost connections, corrupt files). Callers treat it as a server fault.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
