package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// Default offsets from the issue date, in days.
const (
	dueAfterDays    = 30
	expiryAfterDays = 60
)

// InvoiceNumber is the number synthesised for an invoice created without one.
func InvoiceNumber(id int) string {
	return fmt.Sprintf("INV-%03d", id)
}

// InvoiceService manages invoices.
type InvoiceService struct {
	*base
}

// GetAll returns the invoices matching f, latest issue date first.
func (s *InvoiceService) GetAll(ctx context.Context, f models.InvoiceFilter) ([]models.Invoice, error) {
	invoices, err := s.stores.Invoices.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	names := map[int]string{}
	if f.Search != "" {
		clients, err := s.stores.Clients.ListClients(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing clients: %w", err)
		}
		for _, c := range clients {
			names[c.ID] = c.Name
		}
	}

	out := invoices[:0]
	for _, inv := range invoices {
		var name string
		if inv.ClientID != nil {
			name = names[*inv.ClientID]
		}
		if f.Match(inv, name) {
			out = append(out, inv)
		}
	}
	sortInvoices(out)
	return out, nil
}

func sortInvoices(invoices []models.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i].IssueDate, invoices[j].IssueDate
		if !a.Equal(b.Time) {
			return a.After(b.Time)
		}
		return invoices[i].ID > invoices[j].ID
	})
}

func (s *InvoiceService) GetByID(ctx context.Context, id int) (models.Invoice, error) {
	return s.stores.Invoices.GetInvoice(ctx, id)
}

// Create stores a new invoice. Missing dates default to today, +30 and +60
// days; a missing number is derived from the assigned ID.
func (s *InvoiceService) Create(ctx context.Context, in models.InvoiceInput) (inv models.Invoice, err error) {
	defer func() { observe("invoice", "create", err) }()
	if msg := in.Validate(); msg != "" {
		return models.Invoice{}, store.Invalid(msg)
	}
	s.applyDefaultDates(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkClient(ctx, in.ClientID); err != nil {
		return models.Invoice{}, err
	}
	return s.insert(ctx, in.Invoice())
}

// insert stores inv and synthesises its number when empty. Callers hold mu.
func (s *InvoiceService) insert(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	created, err := s.stores.Invoices.CreateInvoice(ctx, inv)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("creating invoice: %w", err)
	}
	if created.Number == "" {
		created.Number = InvoiceNumber(created.ID)
		if created, err = s.stores.Invoices.UpdateInvoice(ctx, created); err != nil {
			return models.Invoice{}, fmt.Errorf("numbering invoice: %w", err)
		}
	}
	slog.Debug("invoice created", "id", created.ID, "number", created.Number)
	return created, nil
}

func (s *InvoiceService) applyDefaultDates(in *models.InvoiceInput) {
	if in.IssueDate.IsZero() {
		in.IssueDate = models.NewDate(s.now())
	}
	if in.DueDate.IsZero() {
		in.DueDate = in.IssueDate.AddDays(dueAfterDays)
	}
	if in.ExpiryDate.IsZero() {
		in.ExpiryDate = in.IssueDate.AddDays(expiryAfterDays)
	}
}

// checkClient rejects references to clients that do not exist.
func (s *InvoiceService) checkClient(ctx context.Context, id *int) error {
	if id == nil {
		return nil
	}
	_, err := s.stores.Clients.GetClient(ctx, *id)
	ok, err := exists(err)
	if err != nil {
		return fmt.Errorf("checking client %d: %w", *id, err)
	}
	if !ok {
		return store.Invalid(fmt.Sprintf("client %d does not exist", *id))
	}
	return nil
}

// Update merges patch into the stored invoice and recomputes its totals.
func (s *InvoiceService) Update(ctx context.Context, id int, patch models.InvoicePatch) (inv models.Invoice, err error) {
	defer func() { observe("invoice", "update", err) }()
	if patch.Status != nil && !models.ValidInvoiceStatus(*patch.Status) {
		return models.Invoice{}, store.Invalid("status must be one of: draft, sent, paid")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.stores.Invoices.GetInvoice(ctx, id)
	if err != nil {
		return models.Invoice{}, err
	}
	next := patch.Apply(cur)
	if msg := next.Validate(); msg != "" {
		return models.Invoice{}, store.Invalid(msg)
	}
	if patch.ClientID != nil {
		if err := s.checkClient(ctx, next.ClientID); err != nil {
			return models.Invoice{}, err
		}
	}
	if next.Number == "" {
		next.Number = InvoiceNumber(next.ID)
	}
	inv, err = s.stores.Invoices.UpdateInvoice(ctx, next)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("updating invoice %d: %w", id, err)
	}
	return inv, nil
}

// UpdateStatus is Update with only the status set.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id int, status string) (models.Invoice, error) {
	return s.Update(ctx, id, models.InvoicePatch{Status: &status})
}

// Delete removes the invoice and clears invoice_id on its todos.
func (s *InvoiceService) Delete(ctx context.Context, id int) (err error) {
	defer func() { observe("invoice", "delete", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stores.Invoices.GetInvoice(ctx, id); err != nil {
		return err
	}

	todos, err := s.stores.Todos.ListTodos(ctx, models.TodoFilter{InvoiceID: &id})
	if err != nil {
		return fmt.Errorf("listing todos of invoice %d: %w", id, err)
	}
	for _, t := range todos {
		t.InvoiceID = nil
		if _, err := s.stores.Todos.UpdateTodo(ctx, t); err != nil {
			return fmt.Errorf("unlinking todo %d from invoice %d: %w", t.ID, id, err)
		}
	}

	if err := s.stores.Invoices.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("deleting invoice %d: %w", id, err)
	}
	return nil
}

// Duplicate copies an invoice into a new draft dated today, with a fresh
// number.
func (s *InvoiceService) Duplicate(ctx context.Context, id int) (inv models.Invoice, err error) {
	defer func() { observe("invoice", "duplicate", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	src, err := s.stores.Invoices.GetInvoice(ctx, id)
	if err != nil {
		return models.Invoice{}, err
	}
	in := models.InvoiceInput{
		ClientID: src.ClientID,
		Status:   models.InvoiceDraft,
		Items:    src.Items,
		TaxRate:  src.TaxRate,
		Notes:    src.Notes,
		Remarks:  src.Remarks,
	}
	s.applyDefaultDates(&in)
	if msg := in.Validate(); msg != "" {
		return models.Invoice{}, store.Invalid(msg)
	}
	return s.insert(ctx, in.Invoice())
}

// Preview computes totals exactly as a save would.
func (s *InvoiceService) Preview(items []models.LineItem, taxRate float64) models.Totals {
	return models.ComputeTotals(items, taxRate)
}

// GetStats aggregates every invoice at the current time.
func (s *InvoiceService) GetStats(ctx context.Context) (models.InvoiceStats, error) {
	invoices, err := s.stores.Invoices.ListInvoices(ctx)
	if err != nil {
		return models.InvoiceStats{}, fmt.Errorf("listing invoices: %w", err)
	}
	return models.ComputeStats(invoices, s.now()), nil
}

// Now is the clock the service derives dates and overdue state from.
func (s *InvoiceService) Now() time.Time { return s.now() }
