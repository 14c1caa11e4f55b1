// Package store defines the storage backends behind the services. Every
// backend implements the same interfaces so one can be swapped for another
// at startup.
package store

import (
	"context"

	"github.com/satheeshds/invoicer/models"
)

// ClientStore persists clients.
type ClientStore interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id int) (models.Client, error)
	// CreateClient assigns the ID and timestamps and returns the stored record.
	CreateClient(ctx context.Context, c models.Client) (models.Client, error)
	// UpdateClient replaces the record with c.ID.
	UpdateClient(ctx context.Context, c models.Client) (models.Client, error)
	DeleteClient(ctx context.Context, id int) error
}

// InvoiceStore persists invoices with their line items.
type InvoiceStore interface {
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id int) (models.Invoice, error)
	CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error)
	UpdateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error)
	DeleteInvoice(ctx context.Context, id int) error
}

// TodoStore persists todos. Filtering is pushed down so remote and SQL
// backends can evaluate it server side.
type TodoStore interface {
	ListTodos(ctx context.Context, f models.TodoFilter) ([]models.Todo, error)
	GetTodo(ctx context.Context, id int) (models.Todo, error)
	CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error)
	UpdateTodo(ctx context.Context, t models.Todo) (models.Todo, error)
	DeleteTodo(ctx context.Context, id int) error
}

// Stores bundles one backend's stores.
type Stores struct {
	Clients  ClientStore
	Invoices InvoiceStore
	Todos    TodoStore
	// Close releases backend resources. May be nil.
	Close func() error
}
