package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestStore_CreateAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(fixedClock()))

	a, err := s.CreateClient(ctx, models.Client{Name: "Acme"})
	require.NoError(t, err)
	b, err := s.CreateClient(ctx, models.Client{Name: "Globex"})
	require.NoError(t, err)

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)

	require.NoError(t, s.DeleteClient(ctx, a.ID))
	c, err := s.CreateClient(ctx, models.Client{Name: "Initech"})
	require.NoError(t, err)
	assert.Equal(t, 3, c.ID, "new IDs stay above every remaining ID")
}

func TestStore_DeleteThenGetIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	inv, err := s.CreateInvoice(ctx, models.Invoice{Status: models.InvoiceDraft})
	require.NoError(t, err)
	require.NoError(t, s.DeleteInvoice(ctx, inv.ID))

	_, err = s.GetInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteInvoice(ctx, inv.ID), store.ErrNotFound)
}

func TestStore_UpdateMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.UpdateClient(ctx, models.Client{ID: 9, Name: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.UpdateTodo(ctx, models.Todo{ID: 9, Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(fixedClock()))

	created, err := s.CreateTodo(ctx, models.Todo{Title: "a", Status: models.TodoPending, Priority: models.PriorityLow})
	require.NoError(t, err)

	created.Title = "b"
	updated, err := s.UpdateTodo(ctx, created)
	require.NoError(t, err)

	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, "b", updated.Title)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	inv, err := s.CreateInvoice(ctx, models.Invoice{Items: []models.LineItem{{Description: "a", Quantity: 1, Rate: 1}}})
	require.NoError(t, err)

	inv.Items[0].Description = "mutated"
	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Items[0].Description)
}

func TestStore_ListTodosFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := New()
	data, err := LoadSeed("")
	require.NoError(t, err)
	s.Seed(data)

	all, err := s.ListTodos(ctx, models.TodoFilter{})
	require.NoError(t, err)
	var ids []int
	for _, td := range all {
		ids = append(ids, td.ID)
	}
	assert.Equal(t, []int{4, 1, 2, 3}, ids)

	invoiceID := 2
	linked, err := s.ListTodos(ctx, models.TodoFilter{InvoiceID: &invoiceID})
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, 1, linked[0].ID)
}

func TestStore_LatencyHonoursContext(t *testing.T) {
	s := New(WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.ListClients(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLoadSeed_Embedded(t *testing.T) {
	data, err := LoadSeed("")
	require.NoError(t, err)
	assert.Len(t, data.Clients, 4)
	assert.Len(t, data.Invoices, 4)
	assert.Len(t, data.Todos, 4)

	s := New()
	s.Seed(data)
	inv, err := s.GetInvoice(context.Background(), 1)
	require.NoError(t, err)
	// 2500 + 12*25, plus 10% tax
	assert.Equal(t, 2800.0, inv.Subtotal)
	assert.Equal(t, 3080.0, inv.Total)
	assert.Equal(t, 2500.0, inv.Items[0].Amount)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed("/nonexistent/seed.json")
	assert.Error(t, err)
}
