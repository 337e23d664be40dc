// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/msomdec/credlog/internal/password"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port           string
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	Password       password.Config
	LogLevel       slog.Level
	CORSOrigin     string
}

// Load builds a Config from getenv, usually os.Getenv. Unset variables take
// their defaults; malformed ones are an error.
func Load(getenv func(string) string) (*Config, error) {
	env := func(key, defaultVal string) string {
		if val := getenv(key); val != "" {
			return val
		}
		return defaultVal
	}

	cfg := &Config{
		Port:           env("PORT", "8080"),
		DatabaseDriver: strings.ToLower(env("DATABASE_DRIVER", DriverSQLite)),
		DatabasePath:   env("DATABASE_PATH", "credlog.db"),
		DatabaseDSN:    getenv("DATABASE_DSN"),
		Password:       password.DefaultConfig(),
		CORSOrigin:     env("CORS_ORIGIN", "*"),
	}

	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("invalid PORT %q", cfg.Port)
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER=%s", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	switch alg := password.Algorithm(strings.ToLower(env("HASH_ALGORITHM", string(password.Argon2id)))); alg {
	case password.Argon2id, password.Bcrypt:
		cfg.Password.Algorithm = alg
	default:
		return nil, fmt.Errorf("unsupported HASH_ALGORITHM %q", alg)
	}

	var err error
	if cfg.Password.BcryptCost, err = intEnv(getenv, "BCRYPT_COST", cfg.Password.BcryptCost, 4, 14); err != nil {
		return nil, err
	}
	memory, err := intEnv(getenv, "ARGON2_MEMORY_KIB", int(cfg.Password.Argon2.MemoryKiB), 8, 4*1024*1024)
	if err != nil {
		return nil, err
	}
	iterations, err := intEnv(getenv, "ARGON2_ITERATIONS", int(cfg.Password.Argon2.Iterations), 1, 64)
	if err != nil {
		return nil, err
	}
	parallelism, err := intEnv(getenv, "ARGON2_PARALLELISM", int(cfg.Password.Argon2.Parallelism), 1, 255)
	if err != nil {
		return nil, err
	}
	cfg.Password.Argon2 = password.Argon2Params{
		MemoryKiB:   uint32(memory),
		Iterations:  uint32(iterations),
		Parallelism: uint8(parallelism),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func intEnv(getenv func(string) string, key string, defaultVal, lo, hi int) (int, error) {
	v := getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d and %d, got %d", key, lo, hi, n)
	}
	return n, nil
}
