package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationFiles embed.FS

// Migrate applies every pending migration for dialect. Safe to call on each
// start; goose records the applied versions.
func Migrate(db *sql.DB, dialect string) error {
	var gooseDialect string
	switch dialect {
	case SQLite:
		gooseDialect = "sqlite3"
	case Postgres:
		gooseDialect = "postgres"
	default:
		return fmt.Errorf("unknown database dialect %q", dialect)
	}

	slog.Info("running database migrations", "dialect", dialect)

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations/"+dialect); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations complete")
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "goose")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...), "component", "goose")
}
