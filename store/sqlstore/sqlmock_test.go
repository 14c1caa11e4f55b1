package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return New(sqlx.NewDb(conn, "sqlmock")), mock
}

func TestListClients_DriverErrorIsBackendError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM clients").WillReturnError(errors.New("disk I/O error"))

	_, err := s.ListClients(context.Background())

	require.Error(t, err)
	var backend *store.BackendError
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, "list clients", backend.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetClient_NoRowsIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM clients WHERE id = ?").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "address", "phone", "created_at", "updated_at"}))

	_, err := s.GetClient(context.Background(), 3)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTodo_ContextErrorPassesThrough(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM todos WHERE id = ?").WillReturnError(context.Canceled)

	_, err := s.GetTodo(context.Background(), 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, store.IsBackend(err))
}

func TestDeleteTodo_NoRowsAffectedIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM todos WHERE id = ?").WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteTodo(context.Background(), 8)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClient_RollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(id\\), 0\\) \\+ 1 FROM clients").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec("INSERT INTO clients").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	_, err := s.CreateClient(context.Background(), models.Client{Name: "Acme"})

	assert.True(t, store.IsBackend(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInvoice_MissingRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invoices SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.UpdateInvoice(context.Background(), models.Invoice{ID: 5, Status: models.InvoiceDraft})

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTodos_PushesFiltersIntoQuery(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM todos WHERE status = \? AND priority = \? AND \(LOWER\(title\) LIKE \?`).
		WithArgs(models.TodoPending, models.PriorityHigh, "%étude%", "%étude%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "title", "description", "status", "priority",
			"due_date", "completed_date", "assignee", "tags", "created_at", "updated_at"}))

	todos, err := s.ListTodos(context.Background(), models.TodoFilter{
		Status:   models.TodoPending,
		Priority: models.PriorityHigh,
		Search:   "ÉTUDE",
	})

	require.NoError(t, err)
	assert.Empty(t, todos)
	assert.NoError(t, mock.ExpectationsWereMet())
}
