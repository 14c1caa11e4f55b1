package memory

import (
	"context"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

func clientID(c models.Client) int { return c.ID }

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Client, len(s.clients))
	copy(out, s.clients)
	return out, nil
}

func (s *Store) GetClient(ctx context.Context, id int) (models.Client, error) {
	if err := s.wait(ctx); err != nil {
		return models.Client{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := indexOf(s.clients, clientID, id)
	if n < 0 {
		return models.Client{}, store.NotFound("client", id)
	}
	return s.clients[n], nil
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	if err := s.wait(ctx); err != nil {
		return models.Client{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	c.ID = nextID(s.clients, clientID)
	c.CreatedAt, c.UpdatedAt = now, now
	s.clients = append(s.clients, c)
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	if err := s.wait(ctx); err != nil {
		return models.Client{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := indexOf(s.clients, clientID, c.ID)
	if n < 0 {
		return models.Client{}, store.NotFound("client", c.ID)
	}
	c.CreatedAt = s.clients[n].CreatedAt
	c.UpdatedAt = s.now().UTC()
	s.clients[n] = c
	return c, nil
}

func (s *Store) DeleteClient(ctx context.Context, id int) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := indexOf(s.clients, clientID, id)
	if n < 0 {
		return store.NotFound("client", id)
	}
	s.clients = append(s.clients[:n], s.clients[n+1:]...)
	return nil
}
