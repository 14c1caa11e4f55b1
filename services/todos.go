package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// TodoService manages todos.
type TodoService struct {
	*base
}

// GetAll returns the todos matching f, newest first.
func (s *TodoService) GetAll(ctx context.Context, f models.TodoFilter) ([]models.Todo, error) {
	todos, err := s.stores.Todos.ListTodos(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	sort.SliceStable(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].ID > todos[j].ID
	})
	return todos, nil
}

// GetByInvoiceID returns the todos linked to an invoice.
func (s *TodoService) GetByInvoiceID(ctx context.Context, invoiceID int) ([]models.Todo, error) {
	return s.GetAll(ctx, models.TodoFilter{InvoiceID: &invoiceID})
}

func (s *TodoService) GetByID(ctx context.Context, id int) (models.Todo, error) {
	return s.stores.Todos.GetTodo(ctx, id)
}

// Create stores a new todo. A todo created as completed is stamped now.
func (s *TodoService) Create(ctx context.Context, in models.TodoInput) (t models.Todo, err error) {
	defer func() { observe("todo", "create", err) }()
	if msg := in.Validate(); msg != "" {
		return models.Todo{}, store.Invalid(msg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkInvoice(ctx, in.InvoiceID); err != nil {
		return models.Todo{}, err
	}
	next := in.Todo()
	next.CompletedDate = models.CompletedDateAfter("", next.Status, nil, s.now().UTC())
	t, err = s.stores.Todos.CreateTodo(ctx, next)
	if err != nil {
		return models.Todo{}, fmt.Errorf("creating todo: %w", err)
	}
	return t, nil
}

// Update merges patch into the stored todo. The completed date follows the
// transition from the stored status, whatever the caller believes it was.
func (s *TodoService) Update(ctx context.Context, id int, patch models.TodoPatch) (t models.Todo, err error) {
	defer func() { observe("todo", "update", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.stores.Todos.GetTodo(ctx, id)
	if err != nil {
		return models.Todo{}, err
	}
	next := patch.Apply(cur)
	if msg := next.Validate(); msg != "" {
		return models.Todo{}, store.Invalid(msg)
	}
	if patch.InvoiceID != nil {
		if err := s.checkInvoice(ctx, next.InvoiceID); err != nil {
			return models.Todo{}, err
		}
	}
	next.CompletedDate = models.CompletedDateAfter(cur.Status, next.Status, cur.CompletedDate, s.now().UTC())
	t, err = s.stores.Todos.UpdateTodo(ctx, next)
	if err != nil {
		return models.Todo{}, fmt.Errorf("updating todo %d: %w", id, err)
	}
	return t, nil
}

// UpdateStatus is Update with only the status set.
func (s *TodoService) UpdateStatus(ctx context.Context, id int, status string) (models.Todo, error) {
	return s.Update(ctx, id, models.TodoPatch{Status: &status})
}

func (s *TodoService) Delete(ctx context.Context, id int) (err error) {
	defer func() { observe("todo", "delete", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.stores.Todos.DeleteTodo(ctx, id); err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	return nil
}

// checkInvoice rejects references to invoices that do not exist.
func (s *TodoService) checkInvoice(ctx context.Context, id *int) error {
	if id == nil {
		return nil
	}
	_, err := s.stores.Invoices.GetInvoice(ctx, *id)
	ok, err := exists(err)
	if err != nil {
		return fmt.Errorf("checking invoice %d: %w", *id, err)
	}
	if !ok {
		return store.Invalid(fmt.Sprintf("invoice %d does not exist", *id))
	}
	return nil
}
