// Package memory is the in-memory mock backend. Records live in slices owned
// by a Store and are lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// Store holds clients, invoices and todos in memory. It is safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	clients  []models.Client
	invoices []models.Invoice
	todos    []models.Todo

	latency time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLatency delays every call by d, like a network round trip would.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stores exposes s through the store interfaces.
func (s *Store) Stores() store.Stores {
	return store.Stores{Clients: s, Invoices: s, Todos: s}
}

func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// nextID is one more than the largest ID in use, or 1.
func nextID[T any](rows []T, id func(T) int) int {
	hi := 0
	for _, r := range rows {
		if v := id(r); v > hi {
			hi = v
		}
	}
	return hi + 1
}

func indexOf[T any](rows []T, id func(T) int, want int) int {
	for n, r := range rows {
		if id(r) == want {
			return n
		}
	}
	return -1
}

func intPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
