package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// ClientService manages clients.
type ClientService struct {
	*base
}

// GetAll returns every client ordered by name, ignoring case.
func (s *ClientService) GetAll(ctx context.Context) ([]models.Client, error) {
	clients, err := s.stores.Clients.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	sort.SliceStable(clients, func(i, j int) bool {
		a, b := strings.ToLower(clients[i].Name), strings.ToLower(clients[j].Name)
		if a != b {
			return a < b
		}
		return clients[i].ID < clients[j].ID
	})
	return clients, nil
}

// Search returns the clients whose name or email contains q.
func (s *ClientService) Search(ctx context.Context, q string) ([]models.Client, error) {
	clients, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := clients[:0]
	for _, c := range clients {
		if c.MatchesSearch(q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ClientService) GetByID(ctx context.Context, id int) (models.Client, error) {
	return s.stores.Clients.GetClient(ctx, id)
}

func (s *ClientService) Create(ctx context.Context, in models.ClientInput) (c models.Client, err error) {
	defer func() { observe("client", "create", err) }()
	if msg := in.Validate(); msg != "" {
		return models.Client{}, store.Invalid(msg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err = s.stores.Clients.CreateClient(ctx, in.Client())
	if err != nil {
		return models.Client{}, fmt.Errorf("creating client: %w", err)
	}
	slog.Debug("client created", "id", c.ID)
	return c, nil
}

// Update merges patch into the stored client.
func (s *ClientService) Update(ctx context.Context, id int, patch models.ClientPatch) (c models.Client, err error) {
	defer func() { observe("client", "update", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.stores.Clients.GetClient(ctx, id)
	if err != nil {
		return models.Client{}, err
	}
	next := patch.Apply(cur)
	if msg := next.Validate(); msg != "" {
		return models.Client{}, store.Invalid(msg)
	}
	c, err = s.stores.Clients.UpdateClient(ctx, next)
	if err != nil {
		return models.Client{}, fmt.Errorf("updating client %d: %w", id, err)
	}
	return c, nil
}

// Delete removes the client and clears client_id on its invoices.
func (s *ClientService) Delete(ctx context.Context, id int) (err error) {
	defer func() { observe("client", "delete", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stores.Clients.GetClient(ctx, id); err != nil {
		return err
	}

	invoices, err := s.stores.Invoices.ListInvoices(ctx)
	if err != nil {
		return fmt.Errorf("listing invoices of client %d: %w", id, err)
	}
	for _, inv := range invoices {
		if inv.ClientID == nil || *inv.ClientID != id {
			continue
		}
		inv.ClientID = nil
		if _, err := s.stores.Invoices.UpdateInvoice(ctx, inv); err != nil {
			return fmt.Errorf("unlinking invoice %d from client %d: %w", inv.ID, id, err)
		}
		slog.Debug("invoice unlinked from deleted client", "invoice_id", inv.ID, "client_id", id)
	}

	if err := s.stores.Clients.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("deleting client %d: %w", id, err)
	}
	return nil
}
