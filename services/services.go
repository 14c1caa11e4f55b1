// Package services holds the business rules on top of a storage backend:
// validation, invoice numbering and totals, todo completion dates and
// reference clean-up on delete.
package services

import (
	"errors"
	"sync"
	"time"

	"github.com/satheeshds/invoicer/metrics"
	"github.com/satheeshds/invoicer/store"
)

// Services bundles the three entity services over one backend.
type Services struct {
	Clients  *ClientService
	Invoices *InvoiceService
	Todos    *TodoService
}

// Option configures New.
type Option func(*base)

// WithClock overrides the clock used for derived dates and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// base is shared by the services. mu serialises every mutation, including
// the read-modify-write of updates, so two writes never interleave.
type base struct {
	stores store.Stores
	mu     *sync.Mutex
	now    func() time.Time
}

// New wires the services to st.
func New(st store.Stores, opts ...Option) *Services {
	b := &base{stores: st, mu: &sync.Mutex{}, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return &Services{
		Clients:  &ClientService{base: b},
		Invoices: &InvoiceService{base: b},
		Todos:    &TodoService{base: b},
	}
}

// observe records the outcome of a service call.
func observe(entity, op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case store.IsValidation(err):
		result = "invalid"
	case errors.Is(err, store.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.RecordOperation(entity, op, result)
}

// exists reports whether get finds a record, distinguishing "missing" from
// backend failures.
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}
