package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/satheeshds/invoicer/db"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a migrated in-memory SQLite database. Each call to the
// clock advances it by a second so created_at ordering is deterministic.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(db.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(database.DB, db.SQLite))

	s := New(database)
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func intRef(v int) *int { return &v }

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestClients_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	zed, err := s.CreateClient(ctx, models.Client{Name: "zed ltd", Email: "z@zed.io"})
	require.NoError(t, err)
	acme, err := s.CreateClient(ctx, models.Client{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 1, zed.ID)
	assert.Equal(t, 2, acme.ID)
	assert.False(t, zed.CreatedAt.IsZero())

	list, err := s.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acme", list[0].Name)

	zed.Phone = "555"
	updated, err := s.UpdateClient(ctx, zed)
	require.NoError(t, err)
	assert.Equal(t, "555", updated.Phone)
	assert.Equal(t, zed.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(zed.UpdatedAt))

	require.NoError(t, s.DeleteClient(ctx, zed.ID))
	_, err = s.GetClient(ctx, zed.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteClient(ctx, zed.ID), store.ErrNotFound)

	_, err = s.UpdateClient(ctx, models.Client{ID: 42, Name: "ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvoices_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c, err := s.CreateClient(ctx, models.Client{Name: "Acme"})
	require.NoError(t, err)

	in := models.InvoiceInput{
		ClientID:   intRef(c.ID),
		Number:     "INV-001",
		Status:     models.InvoiceSent,
		IssueDate:  mustDate(t, "2024-01-15"),
		DueDate:    mustDate(t, "2024-02-14"),
		ExpiryDate: mustDate(t, "2024-03-15"),
		Items: []models.LineItem{
			{Description: "Design", Quantity: 2, Rate: 50},
			{Description: "Hosting", Quantity: 1, Rate: 30},
		},
		TaxRate: 10,
		Notes:   "Net 30",
	}
	created, err := s.CreateInvoice(ctx, in.Invoice())
	require.NoError(t, err)

	got, err := s.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ClientID)
	assert.Equal(t, c.ID, *got.ClientID)
	assert.Equal(t, "2024-02-14", got.DueDate.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Design", got.Items[0].Description)
	assert.Equal(t, 100.0, got.Items[0].Amount)
	assert.Equal(t, 143.0, got.Total)
	assert.Equal(t, "Net 30", got.Notes)

	got.Items = got.Items[:1]
	got.ApplyTotals()
	updated, err := s.UpdateInvoice(ctx, got)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 110.0, updated.Total)

	list, err := s.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 1)

	require.NoError(t, s.DeleteInvoice(ctx, created.ID))
	_, err = s.GetInvoice(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteInvoice(ctx, created.ID), store.ErrNotFound)

	var orphans int
	require.NoError(t, s.db.Get(&orphans, "SELECT COUNT(*) FROM invoice_items"))
	assert.Zero(t, orphans)
}

func TestInvoices_UpdateMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateInvoice(context.Background(), models.Invoice{ID: 7, Status: models.InvoiceDraft})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, store.IsBackend(err))
}

func TestInvoices_ClientDeleteSetsNull(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c, err := s.CreateClient(ctx, models.Client{Name: "Acme"})
	require.NoError(t, err)
	inv, err := s.CreateInvoice(ctx, models.Invoice{ClientID: intRef(c.ID), Status: models.InvoiceDraft})
	require.NoError(t, err)

	require.NoError(t, s.DeleteClient(ctx, c.ID))

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClientID)
}

func TestTodos_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	inv, err := s.CreateInvoice(ctx, models.Invoice{Status: models.InvoiceDraft})
	require.NoError(t, err)

	completedAt := time.Date(2024, 5, 30, 8, 15, 30, 123456789, time.UTC)
	due := mustDate(t, "2024-07-01")
	fixtures := []models.Todo{
		{Title: "Send invoice", Status: models.TodoCompleted, Priority: models.PriorityHigh, CompletedDate: &completedAt, InvoiceID: intRef(inv.ID)},
		{Title: "Call client", Description: "About the INVOICE", Status: models.TodoCompleted, Priority: models.PriorityLow},
		{Title: "Invoice review", Status: models.TodoPending, Priority: models.PriorityMedium, DueDate: &due, InvoiceID: intRef(inv.ID)},
		{Title: "Discount 50% offer", Status: models.TodoPending, Priority: models.PriorityLow},
		{Title: "Order 500 cards", Status: models.TodoPending, Priority: models.PriorityLow},
	}
	for _, f := range fixtures {
		_, err := s.CreateTodo(ctx, f)
		require.NoError(t, err)
	}

	ids := func(f models.TodoFilter) []int {
		todos, err := s.ListTodos(ctx, f)
		require.NoError(t, err)
		var out []int
		for _, td := range todos {
			out = append(out, td.ID)
		}
		return out
	}

	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(models.TodoFilter{Status: "all"}))
	assert.Equal(t, []int{2, 1}, ids(models.TodoFilter{Status: models.TodoCompleted, Search: "invoice"}))
	assert.Equal(t, []int{3, 1}, ids(models.TodoFilter{InvoiceID: intRef(inv.ID)}))
	assert.Equal(t, []int{4}, ids(models.TodoFilter{Search: "50%"}))
	assert.Equal(t, []int{3}, ids(models.TodoFilter{Priority: models.PriorityMedium}))
	assert.Equal(t, []int{5, 4, 2}, ids(models.TodoFilter{Priority: models.PriorityLow}))
	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(models.TodoFilter{Priority: "all"}))
	assert.Equal(t, []int{4}, ids(models.TodoFilter{Priority: models.PriorityLow, Status: models.TodoPending, Search: "discount"}))

	got, err := s.GetTodo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedDate)
	assert.True(t, completedAt.Equal(*got.CompletedDate))

	review, err := s.GetTodo(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, review.DueDate)
	assert.Equal(t, "2024-07-01", review.DueDate.String())
}

func TestTodos_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	td, err := s.CreateTodo(ctx, models.Todo{Title: "a", Status: models.TodoPending, Priority: models.PriorityLow})
	require.NoError(t, err)
	assert.Nil(t, td.CompletedDate)
	assert.Nil(t, td.InvoiceID)

	td.Status = models.TodoCancelled
	td.Assignee = "Sam"
	updated, err := s.UpdateTodo(ctx, td)
	require.NoError(t, err)
	assert.Equal(t, models.TodoCancelled, updated.Status)
	assert.Equal(t, "Sam", updated.Assignee)

	require.NoError(t, s.DeleteTodo(ctx, td.ID))
	_, err = s.GetTodo(ctx, td.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.UpdateTodo(ctx, td)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTodos_CheckConstraint(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTodo(context.Background(), models.Todo{Title: "a", Status: "done", Priority: models.PriorityLow})
	require.Error(t, err)
	assert.True(t, store.IsBackend(err))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%%`, likePattern("50%"))
	assert.Equal(t, `%a\_b%`, likePattern("A_B"))
	assert.Equal(t, `%c:\\x%`, likePattern(`C:\x`))
}

func TestTodos_SearchFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateTodo(ctx, models.Todo{Title: "ÉTUDE de facture", Status: models.TodoPending, Priority: models.PriorityMedium})
	require.NoError(t, err)
	_, err = s.CreateTodo(ctx, models.Todo{Title: "Relance", Description: "Écrire au CLIENT", Status: models.TodoPending, Priority: models.PriorityMedium})
	require.NoError(t, err)

	found, err := s.ListTodos(ctx, models.TodoFilter{Search: "étude"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ÉTUDE de facture", found[0].Title)

	found, err = s.ListTodos(ctx, models.TodoFilter{Search: "écrire", Status: models.TodoPending})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Relance", found[0].Title)
}
