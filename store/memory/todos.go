package memory

import (
	"context"
	"sort"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

func todoID(t models.Todo) int { return t.ID }

func cloneTodo(t models.Todo) models.Todo {
	t.InvoiceID = intPtr(t.InvoiceID)
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.CompletedDate != nil {
		c := *t.CompletedDate
		t.CompletedDate = &c
	}
	return t
}

// ListTodos returns the todos matching f, newest first.
func (s *Store) ListTodos(ctx context.Context, f models.TodoFilter) ([]models.Todo, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Todo{}
	for _, t := range s.todos {
		if f.Match(t) {
			out = append(out, cloneTodo(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetTodo(ctx context.Context, id int) (models.Todo, error) {
	if err := s.wait(ctx); err != nil {
		return models.Todo{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := indexOf(s.todos, todoID, id)
	if n < 0 {
		return models.Todo{}, store.NotFound("todo", id)
	}
	return cloneTodo(s.todos[n]), nil
}

func (s *Store) CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	if err := s.wait(ctx); err != nil {
		return models.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	t = cloneTodo(t)
	t.ID = nextID(s.todos, todoID)
	t.CreatedAt, t.UpdatedAt = now, now
	s.todos = append(s.todos, t)
	return cloneTodo(t), nil
}

func (s *Store) UpdateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	if err := s.wait(ctx); err != nil {
		return models.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := indexOf(s.todos, todoID, t.ID)
	if n < 0 {
		return models.Todo{}, store.NotFound("todo", t.ID)
	}
	t = cloneTodo(t)
	t.CreatedAt = s.todos[n].CreatedAt
	t.UpdatedAt = s.now().UTC()
	s.todos[n] = t
	return cloneTodo(t), nil
}

func (s *Store) DeleteTodo(ctx context.Context, id int) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := indexOf(s.todos, todoID, id)
	if n < 0 {
		return store.NotFound("todo", id)
	}
	s.todos = append(s.todos[:n], s.todos[n+1:]...)
	return nil
}
