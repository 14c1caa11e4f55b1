// Package config loads settings from the environment, optionally seeded from
// a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

type Config struct {
	Port     string `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Backend selects the storage variant: memory, sqlite, postgres or remote.
	Backend string `env:"STORE_BACKEND,default=memory"`

	DBPath      string `env:"DB_PATH,default=./data/invoicer.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	RemoteBaseURL   string        `env:"REMOTE_BASE_URL"`
	RemoteProjectID string        `env:"REMOTE_PROJECT_ID"`
	RemotePublicKey string        `env:"REMOTE_PUBLIC_KEY"`
	RemoteRPS       float64       `env:"REMOTE_RPS,default=10"`
	RemoteTimeout   time.Duration `env:"REMOTE_TIMEOUT,default=15s"`

	MockLatency  time.Duration `env:"MOCK_LATENCY,default=0s"`
	SeedMockData bool          `env:"SEED_MOCK_DATA,default=true"`
	SeedPath     string        `env:"SEED_PATH"`

	AuthUser string `env:"AUTH_USER"`
	AuthPass string `env:"AUTH_PASS"`

	CORSOrigins string `env:"CORS_ORIGINS,default=*"`
	StaticDir   string `env:"STATIC_DIR"`
}

// Load reads envFiles (default .env) when present, then decodes the
// environment. Variables already set win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("loaded env file", "path", f)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decoding environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRemote:
		if c.RemoteBaseURL == "" || c.RemoteProjectID == "" {
			return fmt.Errorf("REMOTE_BASE_URL and REMOTE_PROJECT_ID are required for the remote backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: memory, sqlite, postgres, remote")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AllowedOrigins splits CORSOrigins on commas.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
