package memory

import (
	"context"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

func invoiceID(inv models.Invoice) int { return inv.ID }

// cloneInvoice detaches the items slice and client pointer from callers.
func cloneInvoice(inv models.Invoice) models.Invoice {
	inv.ClientID = intPtr(inv.ClientID)
	inv.Items = append([]models.LineItem(nil), inv.Items...)
	return inv
}

func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out, nil
}

func (s *Store) GetInvoice(ctx context.Context, id int) (models.Invoice, error) {
	if err := s.wait(ctx); err != nil {
		return models.Invoice{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := indexOf(s.invoices, invoiceID, id)
	if n < 0 {
		return models.Invoice{}, store.NotFound("invoice", id)
	}
	return cloneInvoice(s.invoices[n]), nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	if err := s.wait(ctx); err != nil {
		return models.Invoice{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	inv = cloneInvoice(inv)
	inv.ID = nextID(s.invoices, invoiceID)
	inv.CreatedAt, inv.UpdatedAt = now, now
	s.invoices = append(s.invoices, inv)
	return cloneInvoice(inv), nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	if err := s.wait(ctx); err != nil {
		return models.Invoice{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := indexOf(s.invoices, invoiceID, inv.ID)
	if n < 0 {
		return models.Invoice{}, store.NotFound("invoice", inv.ID)
	}
	inv = cloneInvoice(inv)
	inv.CreatedAt = s.invoices[n].CreatedAt
	inv.UpdatedAt = s.now().UTC()
	s.invoices[n] = inv
	return cloneInvoice(inv), nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id int) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := indexOf(s.invoices, invoiceID, id)
	if n < 0 {
		return store.NotFound("invoice", id)
	}
	s.invoices = append(s.invoices[:n], s.invoices[n+1:]...)
	return nil
}
