package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/satheeshds/invoicer/services"
)

// Handler serves the API on top of the services.
type Handler struct {
	svc *services.Services
}

func New(svc *services.Services) *Handler {
	return &Handler{svc: svc}
}

// Mount registers the API routes on r.
func (h *Handler) Mount(r chi.Router) {
	// Clients
	r.Get("/clients", h.ListClients)
	r.Post("/clients", h.CreateClient)
	r.Get("/clients/{id}", h.GetClient)
	r.Put("/clients/{id}", h.UpdateClient)
	r.Patch("/clients/{id}", h.UpdateClient)
	r.Delete("/clients/{id}", h.DeleteClient)

	// Invoices
	r.Get("/invoices", h.ListInvoices)
	r.Post("/invoices", h.CreateInvoice)
	r.Get("/invoices/stats", h.GetInvoiceStats)
	r.Post("/invoices/preview", h.PreviewInvoice)
	r.Get("/invoices/{id}", h.GetInvoice)
	r.Put("/invoices/{id}", h.UpdateInvoice)
	r.Patch("/invoices/{id}", h.UpdateInvoice)
	r.Delete("/invoices/{id}", h.DeleteInvoice)
	r.Patch("/invoices/{id}/status", h.UpdateInvoiceStatus)
	r.Post("/invoices/{id}/duplicate", h.DuplicateInvoice)
	r.Get("/invoices/{id}/todos", h.ListInvoiceTodos)

	// Todos
	r.Get("/todos", h.ListTodos)
	r.Post("/todos", h.CreateTodo)
	r.Get("/todos/{id}", h.GetTodo)
	r.Put("/todos/{id}", h.UpdateTodo)
	r.Patch("/todos/{id}", h.UpdateTodo)
	r.Delete("/todos/{id}", h.DeleteTodo)
	r.Patch("/todos/{id}/status", h.UpdateTodoStatus)

	// Dashboard
	r.Get("/dashboard", h.GetDashboard)
}

// statusInput is the body of the status endpoints.
type statusInput struct {
	Status string `json:"status"`
}
