package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

const todoSelectQuery = `SELECT id, invoice_id, title, description, status, priority, due_date, completed_date,
		assignee, tags, created_at, updated_at
		FROM todos`

type todoRow struct {
	ID            int            `db:"id"`
	InvoiceID     sql.NullInt64  `db:"invoice_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Status        string         `db:"status"`
	Priority      string         `db:"priority"`
	DueDate       sql.NullString `db:"due_date"`
	CompletedDate sql.NullString `db:"completed_date"`
	Assignee      string         `db:"assignee"`
	Tags          string         `db:"tags"`
	CreatedAt     string         `db:"created_at"`
	UpdatedAt     string         `db:"updated_at"`
}

func (r todoRow) model() models.Todo {
	t := models.Todo{
		ID:            r.ID,
		InvoiceID:     intPtr(r.InvoiceID),
		Title:         r.Title,
		Description:   r.Description,
		Status:        r.Status,
		Priority:      r.Priority,
		CompletedDate: stampPtr(r.CompletedDate),
		Assignee:      r.Assignee,
		Tags:          r.Tags,
		CreatedAt:     parseStamp(r.CreatedAt),
		UpdatedAt:     parseStamp(r.UpdatedAt),
	}
	if d := scanDate(r.DueDate); !d.IsZero() {
		t.DueDate = &d
	}
	return t
}

// ListTodos returns the todos matching f, newest first. SQLite's LOWER folds
// ASCII only, so there the search text is matched after the query.
func (s *Store) ListTodos(ctx context.Context, f models.TodoFilter) ([]models.Todo, error) {
	query := todoSelectQuery
	var conditions []string
	var args []any

	if f.Status != "" && f.Status != "all" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" && f.Priority != "all" {
		conditions = append(conditions, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.InvoiceID != nil {
		conditions = append(conditions, "invoice_id = ?")
		args = append(args, *f.InvoiceID)
	}
	search := strings.TrimSpace(f.Search)
	searchInQuery := search != "" && !s.isSQLite()
	if searchInQuery {
		conditions = append(conditions, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		p := likePattern(search)
		args = append(args, p, p)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, backendErr("list todos", err)
	}
	todos := make([]models.Todo, 0, len(rows))
	textOnly := models.TodoFilter{Search: search}
	for _, r := range rows {
		t := r.model()
		if search != "" && !searchInQuery && !textOnly.Match(t) {
			continue
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func (s *Store) GetTodo(ctx context.Context, id int) (models.Todo, error) {
	var r todoRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(todoSelectQuery+" WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, store.NotFound("todo", id)
	}
	if err != nil {
		return models.Todo{}, backendErr("get todo", err)
	}
	return r.model(), nil
}

func (s *Store) CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	now := s.stamp()
	var id int
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, "todos"); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO todos (id, invoice_id, title, description, status, priority,
			due_date, completed_date, assignee, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			id, nullInt(t.InvoiceID), t.Title, t.Description, t.Status, t.Priority,
			datePtrValue(t.DueDate), nullStamp(t.CompletedDate), t.Assignee, t.Tags, now, now)
		return err
	})
	if err != nil {
		return models.Todo{}, backendErr("create todo", err)
	}
	return s.GetTodo(ctx, id)
}

func (s *Store) UpdateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE todos SET invoice_id = ?, title = ?, description = ?, status = ?,
		priority = ?, due_date = ?, completed_date = ?, assignee = ?, tags = ?, updated_at = ? WHERE id = ?`),
		nullInt(t.InvoiceID), t.Title, t.Description, t.Status, t.Priority,
		datePtrValue(t.DueDate), nullStamp(t.CompletedDate), t.Assignee, t.Tags, s.stamp(), t.ID)
	if err != nil {
		return models.Todo{}, backendErr("update todo", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Todo{}, store.NotFound("todo", t.ID)
	}
	return s.GetTodo(ctx, t.ID)
}

func (s *Store) DeleteTodo(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return backendErr("delete todo", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.NotFound("todo", id)
	}
	return nil
}
