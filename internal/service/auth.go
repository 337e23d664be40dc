package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/credlog/internal/domain"
	"github.com/msomdec/credlog/internal/password"
)

// AuthService handles user registration and login. Every successful
// registration and login is written to the audit log.
type AuthService struct {
	store     domain.CredentialStore
	passwords *password.Authenticator
	metrics   *Metrics

	// decoy credentials let unknown usernames cost the same verification
	// work as known ones.
	decoySalt string
	decoyHash string
}

// NewAuthService creates a new AuthService. metrics may be nil.
func NewAuthService(store domain.CredentialStore, passwords *password.Authenticator, metrics *Metrics) (*AuthService, error) {
	salt, hash, err := passwords.Hash("decoy-password-never-used")
	if err != nil {
		return nil, fmt.Errorf("derive decoy hash: %w", err)
	}
	return &AuthService{
		store:     store,
		passwords: passwords,
		metrics:   metrics,
		decoySalt: salt,
		decoyHash: hash,
	}, nil
}

// Register creates a new user and appends a register entry in the same
// transaction. It returns domain.ErrDuplicateUsername if the name is taken.
func (s *AuthService) Register(ctx context.Context, username, plaintext string) (*domain.User, error) {
	if username == "" || plaintext == "" {
		s.metrics.registration(outcomeInvalid)
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	// Fast path that skips hashing; the primary key is what actually
	// guarantees uniqueness.
	exists, err := s.store.Users().Exists(ctx, username)
	if err != nil {
		s.metrics.registration(outcomeError)
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		s.metrics.registration(outcomeConflict)
		return nil, domain.ErrDuplicateUsername
	}

	start := time.Now()
	salt, hash, err := s.passwords.Hash(plaintext)
	s.metrics.observeHash(time.Since(start))
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			s.metrics.registration(outcomeInvalid)
			return nil, fmt.Errorf("%w: password is too long", domain.ErrInvalidInput)
		}
		s.metrics.registration(outcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Salt:         salt,
		PasswordHash: hash,
	}

	err = s.store.InTx(ctx, func(users domain.UserRepository, history domain.HistoryRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		_, err := history.Append(ctx, username, domain.ActionRegister)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			s.metrics.registration(outcomeConflict)
			return nil, domain.ErrDuplicateUsername
		}
		s.metrics.registration(outcomeError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.registration(outcomeSuccess)
	slog.Info("user registered", "username", username, "algorithm", s.passwords.Algorithm())
	return user, nil
}

// Login verifies credentials and appends a login entry on success. Unknown
// users and wrong passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, plaintext string) (*domain.User, error) {
	if username == "" || plaintext == "" {
		s.metrics.login(outcomeInvalid)
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.passwords.Verify(plaintext, s.decoySalt, s.decoyHash)
			s.metrics.login(outcomeInvalidCredentials)
			slog.Info("login rejected", "username", username)
			return nil, domain.ErrInvalidCredentials
		}
		s.metrics.login(outcomeError)
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.passwords.Verify(plaintext, user.Salt, user.PasswordHash) {
		s.metrics.login(outcomeInvalidCredentials)
		slog.Info("login rejected", "username", username)
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.store.History().Append(ctx, username, domain.ActionLogin); err != nil {
		s.metrics.login(outcomeError)
		return nil, fmt.Errorf("record login: %w", err)
	}

	s.metrics.login(outcomeSuccess)
	slog.Info("user logged in", "username", username)
	return user, nil
}

// UserExists reports whether username is registered.
func (s *AuthService) UserExists(ctx context.Context, username string) (bool, error) {
	return s.store.Users().Exists(ctx, username)
}
