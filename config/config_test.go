package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetAfter removes keys a loaded env file put into the process environment.
func unsetAfter(t *testing.T, keys ...string) {
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_BACKEND", "REMOTE_RPS", "MOCK_LATENCY", "SEED_MOCK_DATA", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 10.0, cfg.RemoteRPS)
	assert.Equal(t, 15*time.Second, cfg.RemoteTimeout)
	assert.Zero(t, cfg.MockLatency)
	assert.True(t, cfg.SeedMockData)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoad_EnvFileAndPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"STORE_BACKEND=sqlite\nDB_PATH=/tmp/invoicer-test.db\nMOCK_LATENCY=250ms\nPORT=7070\nLOG_LEVEL=debug\n"), 0o600))
	unsetAfter(t, "STORE_BACKEND", "DB_PATH", "MOCK_LATENCY", "LOG_LEVEL")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/tmp/invoicer-test.db", cfg.DBPath)
	assert.Equal(t, 250*time.Millisecond, cfg.MockLatency)
	assert.Equal(t, "9090", cfg.Port, "process environment wins over the file")
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_RejectsIncompleteBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendPostgres)
	t.Setenv("DATABASE_URL", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.EqualError(t, err, "DATABASE_URL is required for the postgres backend")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Backend: BackendMemory}, false},
		{"sqlite", Config{Backend: BackendSQLite}, false},
		{"postgres with url", Config{Backend: BackendPostgres, DatabaseURL: "postgres://localhost/invoicer"}, false},
		{"remote without project", Config{Backend: BackendRemote, RemoteBaseURL: "https://records.example.com"}, true},
		{"remote complete", Config{Backend: BackendRemote, RemoteBaseURL: "https://records.example.com", RemoteProjectID: "p1"}, false},
		{"unknown", Config{Backend: "mongo"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: " http://localhost:5173, https://app.example.com ,,"}
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.AllowedOrigins())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Config{}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
}
