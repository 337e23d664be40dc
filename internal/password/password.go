// Package password derives and verifies salted password hashes.
//
// Two algorithms are supported. New hashes use the configured one; Verify
// accepts either, so switching the configured algorithm does not lock out
// existing users.
//
// argon2id rows store a base64 salt in the salt column and a hash of the form
//
//	$argon2id$v=19$m=<KiB>,t=<iterations>,p=<parallelism>$<key>
//
// bcrypt rows store the full bcrypt hash and, in the salt column, the
// "$2a$<cost>$<22 chars>" prefix the hash embeds.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

var (
	ErrEmptyPassword        = errors.New("password is empty")
	ErrPasswordTooLong      = errors.New("password is too long")
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
)

const (
	argon2Version = 19
	saltLength    = 16
	keyLength     = 32

	// bcryptSaltLength is the length of "$2a$NN$" plus the 22-char salt.
	bcryptSaltLength = 29
)

// Argon2Params controls argon2id cost. MemoryKiB is in KiB as argon2.IDKey
// expects.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// Config selects the algorithm and cost used for new hashes.
type Config struct {
	Algorithm  Algorithm
	BcryptCost int
	Argon2     Argon2Params
}

func DefaultConfig() Config {
	return Config{
		Algorithm:  Argon2id,
		BcryptCost: 12,
		Argon2: Argon2Params{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: 2,
		},
	}
}

// Authenticator is stateless apart from its cost configuration and is safe
// for concurrent use.
type Authenticator struct {
	cfg Config
}

// NewAuthenticator validates cfg and returns an Authenticator.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	switch cfg.Algorithm {
	case Argon2id:
		if cfg.Argon2.MemoryKiB < 8 || cfg.Argon2.Iterations == 0 || cfg.Argon2.Parallelism == 0 {
			return nil, fmt.Errorf("invalid argon2id parameters: m=%d t=%d p=%d",
				cfg.Argon2.MemoryKiB, cfg.Argon2.Iterations, cfg.Argon2.Parallelism)
		}
	case Bcrypt:
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid bcrypt cost %d", cfg.BcryptCost)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
	return &Authenticator{cfg: cfg}, nil
}

// Algorithm reports the algorithm used for new hashes.
func (a *Authenticator) Algorithm() Algorithm {
	return a.cfg.Algorithm
}

// Hash generates a fresh random salt and derives the hash of plaintext under
// it. Every call produces a different salt.
func (a *Authenticator) Hash(plaintext string) (salt, hash string, err error) {
	if plaintext == "" {
		return "", "", ErrEmptyPassword
	}
	if a.cfg.Algorithm == Bcrypt {
		return a.hashBcrypt(plaintext)
	}
	return a.hashArgon2id(plaintext)
}

func (a *Authenticator) hashArgon2id(plaintext string) (string, string, error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}

	p := a.cfg.Argon2
	key := argon2.IDKey([]byte(plaintext), raw, p.Iterations, p.MemoryKiB, p.Parallelism, keyLength)

	b64 := base64.RawStdEncoding
	hash := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2Version, p.MemoryKiB, p.Iterations, p.Parallelism, b64.EncodeToString(key))
	return b64.EncodeToString(raw), hash, nil
}

func (a *Authenticator) hashBcrypt(plaintext string) (string, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), a.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", "", ErrPasswordTooLong
		}
		return "", "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash[:bcryptSaltLength]), string(hash), nil
}

// Verify reports whether plaintext hashes to hash under salt. Malformed input
// of any kind yields false; the caller cannot tell it apart from a wrong
// password.
func (a *Authenticator) Verify(plaintext, salt, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return a.verifyArgon2id(plaintext, salt, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return verifyBcrypt(plaintext, salt, hash)
	default:
		return false
	}
}

func (a *Authenticator) verifyArgon2id(plaintext, salt, hash string) bool {
	params, expected, ok := decodeArgon2id(hash)
	if !ok || !a.withinBounds(params) {
		return false
	}
	raw, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil || len(raw) < 8 || len(raw) > 64 {
		return false
	}

	key := argon2.IDKey([]byte(plaintext), raw, params.Iterations, params.MemoryKiB, params.Parallelism,
		uint32(len(expected))) // #nosec G115 -- bounded by decodeArgon2id.
	return subtle.ConstantTimeCompare(key, expected) == 1
}

func verifyBcrypt(plaintext, salt, hash string) bool {
	if len(salt) != bcryptSaltLength || !strings.HasPrefix(hash, salt) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// withinBounds rejects stored parameters far above the configured cost so a
// tampered row cannot make a single login burn unbounded memory or CPU.
// Hashes made with older, cheaper settings still verify.
func (a *Authenticator) withinBounds(got Argon2Params) bool {
	limit := DefaultConfig().Argon2
	if a.cfg.Algorithm == Argon2id {
		limit = a.cfg.Argon2
	}
	return got.MemoryKiB <= limit.MemoryKiB*2 &&
		got.Iterations <= limit.Iterations*2 &&
		uint32(got.Parallelism) <= uint32(limit.Parallelism)*2
}

func decodeArgon2id(encoded string) (Argon2Params, []byte, bool) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", key
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2Params{}, nil, false
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return Argon2Params{}, nil, false
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Argon2Params{}, nil, false
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Argon2Params{}, nil, false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return Argon2Params{}, nil, false
	}

	return Argon2Params{MemoryKiB: mem, Iterations: it, Parallelism: uint8(par)}, key, true
}
