package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Dialects understood by Open and Migrate.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Open creates and returns a database connection for dialect. For SQLite the
// source is a file path (":memory:" for a throwaway database) and WAL mode and
// foreign keys are enabled. For Postgres it is a pgx connection string.
func Open(dialect, source string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch dialect {
	case SQLite:
		db, err = openSQLite(source)
	case Postgres:
		db, err = sqlx.Open("pgx", source)
	default:
		return nil, fmt.Errorf("unknown database dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	slog.Info("database connected", "dialect", dialect)
	return db, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		path = "./data/invoicer.db"
	}
	if path != ":memory:" {
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, err
	}
	// One connection serialises writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	return db, nil
}
