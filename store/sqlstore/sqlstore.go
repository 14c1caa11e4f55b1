// Package sqlstore is the SQL backend, shared by SQLite and Postgres. Queries
// are written with ? placeholders and rebound for the driver in use.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// stampLayout is fixed width so TEXT timestamps sort chronologically.
const stampLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements the store interfaces on a SQL database.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an open, migrated database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Stores exposes s through the store interfaces. Close closes the database.
func (s *Store) Stores() store.Stores {
	return store.Stores{Clients: s, Invoices: s, Todos: s, Close: s.db.Close}
}

func (s *Store) isSQLite() bool {
	return s.db.DriverName() == "sqlite"
}

func (s *Store) stamp() string {
	return formatStamp(s.now())
}

func formatStamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func parseStamp(v string) time.Time {
	t, err := time.Parse(stampLayout, v)
	if err != nil {
		// Rows written by other tools may use plain RFC3339.
		t, _ = time.Parse(time.RFC3339Nano, v)
	}
	return t
}

func nullStamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatStamp(*t), Valid: true}
}

func stampPtr(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t := parseStamp(v.String)
	return &t
}

func nullDate(d models.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func datePtrValue(d *models.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return nullDate(*d)
}

func scanDate(v sql.NullString) models.Date {
	if !v.Valid {
		return models.Date{}
	}
	d, _ := models.ParseDate(v.String)
	return d
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// backendErr wraps a driver failure, passing context errors through.
func backendErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &store.BackendError{Op: op, Err: err}
}

// nextID allocates max(id)+1 inside tx.
func nextID(ctx context.Context, tx *sqlx.Tx, table string) (int, error) {
	var id int
	err := tx.GetContext(ctx, &id, fmt.Sprintf("SELECT COALESCE(MAX(id), 0) + 1 FROM %s", table))
	return id, err
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
