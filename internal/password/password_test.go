package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/credlog/internal/password"
)

// Cheap parameters keep the suite fast; production defaults are far higher.
func testConfig(alg password.Algorithm) password.Config {
	return password.Config{
		Algorithm:  alg,
		BcryptCost: 4,
		Argon2:     password.Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1},
	}
}

func newAuthenticator(t *testing.T, alg password.Algorithm) *password.Authenticator {
	t.Helper()
	a, err := password.NewAuthenticator(testConfig(alg))
	require.NoError(t, err)
	return a
}

var algorithms = []password.Algorithm{password.Argon2id, password.Bcrypt}

func TestHashThenVerify(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			a := newAuthenticator(t, alg)

			salt, hash, err := a.Hash("secret123")
			require.NoError(t, err)
			assert.NotEmpty(t, salt)
			assert.NotEmpty(t, hash)
			assert.NotContains(t, hash, "secret123")

			assert.True(t, a.Verify("secret123", salt, hash))
		})
	}
}

func TestHash_FreshSaltEveryCall(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			a := newAuthenticator(t, alg)

			salt1, hash1, err := a.Hash("same-password")
			require.NoError(t, err)
			salt2, hash2, err := a.Hash("same-password")
			require.NoError(t, err)

			assert.NotEqual(t, salt1, salt2)
			assert.NotEqual(t, hash1, hash2)
		})
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	a := newAuthenticator(t, password.Argon2id)

	_, _, err := a.Hash("")
	assert.ErrorIs(t, err, password.ErrEmptyPassword)
}

func TestHash_BcryptTooLong(t *testing.T) {
	a := newAuthenticator(t, password.Bcrypt)

	_, _, err := a.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, password.ErrPasswordTooLong)
}

func TestHash_BcryptSaltIsHashPrefix(t *testing.T) {
	a := newAuthenticator(t, password.Bcrypt)

	salt, hash, err := a.Hash("secret123")
	require.NoError(t, err)
	assert.Len(t, salt, 29)
	assert.True(t, strings.HasPrefix(hash, salt))
	assert.True(t, strings.HasPrefix(salt, "$2a$04$"))
}

func TestVerify_WrongPassword(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			a := newAuthenticator(t, alg)

			salt, hash, err := a.Hash("secret123")
			require.NoError(t, err)

			assert.False(t, a.Verify("wrong", salt, hash))
			assert.False(t, a.Verify("", salt, hash))
			assert.False(t, a.Verify("secret1234", salt, hash))
		})
	}
}

func TestVerify_SaltMustMatch(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			a := newAuthenticator(t, alg)

			salt1, hash1, err := a.Hash("secret123")
			require.NoError(t, err)
			salt2, _, err := a.Hash("secret123")
			require.NoError(t, err)

			assert.True(t, a.Verify("secret123", salt1, hash1))
			assert.False(t, a.Verify("secret123", salt2, hash1))
		})
	}
}

func TestVerify_MalformedInputNeverPanics(t *testing.T) {
	a := newAuthenticator(t, password.Argon2id)
	salt, hash, err := a.Hash("secret123")
	require.NoError(t, err)

	tests := []struct {
		name string
		salt string
		hash string
	}{
		{"empty", "", ""},
		{"garbage hash", salt, "not-a-hash"},
		{"garbage salt", "%%%", hash},
		{"short salt", "AAAA", hash},
		{"truncated argon2", salt, "$argon2id$v=19$m=1024,t=1,p=1"},
		{"wrong version", salt, strings.Replace(hash, "v=19", "v=16", 1)},
		{"zero params", salt, strings.Replace(hash, "m=1024,t=1,p=1", "m=0,t=0,p=0", 1)},
		{"non-numeric params", salt, strings.Replace(hash, "m=1024", "m=abc", 1)},
		{"bad key encoding", salt, hash[:strings.LastIndex(hash, "$")+1] + "!!!"},
		{"truncated bcrypt", "$2a$04$abcdefghijklmnopqrstuv", "$2a$04$abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, a.Verify("secret123", tc.salt, tc.hash))
			})
		})
	}
}

func TestVerify_RejectsInflatedCost(t *testing.T) {
	a := newAuthenticator(t, password.Argon2id)
	salt, hash, err := a.Hash("secret123")
	require.NoError(t, err)

	inflated := strings.Replace(hash, "m=1024", "m=1048576", 1)
	assert.False(t, a.Verify("secret123", salt, inflated))
}

func TestVerify_AcceptsOtherAlgorithm(t *testing.T) {
	legacy := newAuthenticator(t, password.Bcrypt)
	current := newAuthenticator(t, password.Argon2id)

	salt, hash, err := legacy.Hash("secret123")
	require.NoError(t, err)

	assert.True(t, current.Verify("secret123", salt, hash))
}

func TestNewAuthenticator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  password.Config
	}{
		{"unknown algorithm", password.Config{Algorithm: "md5"}},
		{"bcrypt cost too low", password.Config{Algorithm: password.Bcrypt, BcryptCost: 2}},
		{"bcrypt cost too high", password.Config{Algorithm: password.Bcrypt, BcryptCost: 40}},
		{"argon2 zero iterations", password.Config{
			Algorithm: password.Argon2id,
			Argon2:    password.Argon2Params{MemoryKiB: 1024, Parallelism: 1},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := password.NewAuthenticator(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := password.DefaultConfig()

	a, err := password.NewAuthenticator(cfg)
	require.NoError(t, err)
	assert.Equal(t, password.Argon2id, a.Algorithm())
	assert.Equal(t, 12, cfg.BcryptCost)
}
