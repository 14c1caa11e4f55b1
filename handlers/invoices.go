package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/satheeshds/invoicer/models"
	"golang.org/x/sync/errgroup"
)

// invoiceView is an invoice as rendered: client name resolved and the
// display status derived at request time.
type invoiceView struct {
	models.Invoice
	ClientName    string `json:"client_name"`
	DisplayStatus string `json:"display_status"`
	BadgeVariant  string `json:"badge_variant"`
	IsOverdue     bool   `json:"is_overdue"`
}

func newInvoiceView(inv models.Invoice, names map[int]string, now time.Time) invoiceView {
	v := invoiceView{
		Invoice:       inv,
		DisplayStatus: models.DisplayStatus(inv.Status, inv.DueDate, now),
		BadgeVariant:  models.BadgeVariant(inv.Status, inv.DueDate, now),
		IsOverdue:     inv.IsOverdue(now),
	}
	if inv.ClientID != nil {
		v.ClientName = names[*inv.ClientID]
	}
	return v
}

func invoiceViews(invoices []models.Invoice, names map[int]string, now time.Time) []invoiceView {
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, newInvoiceView(inv, names, now))
	}
	return views
}

// clientNames maps client IDs to names.
func (h *Handler) clientNames(ctx context.Context) (map[int]string, error) {
	clients, err := h.svc.Clients.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	return names, nil
}

// ListInvoices lists invoices
// @Summary      List invoices
// @Description  Get invoices, latest issue date first, with client name and display status.
// @Tags         invoices
// @Produce      json
// @Param        status     query     string  false  "Filter by status (draft, sent, paid or all)"
// @Param        search     query     string  false  "Search by invoice number or client name"
// @Param        client_id  query     int     false  "Filter by client"
// @Success      200        {object}  Response{data=[]invoiceView}
// @Failure      400        {object}  Response{error=string}
// @Router       /invoices [get]
// @Security     BasicAuth
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID, ok := queryInt(w, r, "client_id")
	if !ok {
		return
	}
	filter := models.InvoiceFilter{
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		ClientID: clientID,
	}

	var (
		invoices []models.Invoice
		names    map[int]string
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		invoices, err = h.svc.Invoices.GetAll(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		names, err = h.clientNames(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, invoiceViews(invoices, names, h.svc.Invoices.Now()))
}

// GetInvoice retrieves a single invoice by ID
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=invoiceView}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [get]
// @Security     BasicAuth
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Invoices.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	h.writeInvoice(w, r, http.StatusOK, inv)
}

// writeInvoice renders a single invoice with its client name.
func (h *Handler) writeInvoice(w http.ResponseWriter, r *http.Request, status int, inv models.Invoice) {
	names := map[int]string{}
	if inv.ClientID != nil {
		if c, err := h.svc.Clients.GetByID(r.Context(), *inv.ClientID); err == nil {
			names[c.ID] = c.Name
		}
	}
	writeJSON(w, status, newInvoiceView(inv, names, h.svc.Invoices.Now()))
}

// CreateInvoice creates a new invoice
// @Summary      Create invoice
// @Description  Create an invoice. Totals are computed from the items and tax rate; dates and number default when omitted.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Invoice contents"
// @Success      201      {object}  Response{data=invoiceView}
// @Failure      400      {object}  Response{error=string}
// @Router       /invoices [post]
// @Security     BasicAuth
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	inv, err := h.svc.Invoices.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	h.writeInvoice(w, r, http.StatusCreated, inv)
}

// UpdateInvoice updates an existing invoice
// @Summary      Update invoice
// @Description  Merge the supplied fields into an invoice and recompute its totals.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Invoice ID"
// @Param        invoice  body      models.InvoicePatch  true  "Fields to change"
// @Success      200      {object}  Response{data=invoiceView}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /invoices/{id} [put]
// @Security     BasicAuth
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch models.InvoicePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	inv, err := h.svc.Invoices.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	h.writeInvoice(w, r, http.StatusOK, inv)
}

// UpdateInvoiceStatus sets the status of an invoice
// @Summary      Update invoice status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path      int          true  "Invoice ID"
// @Param        status  body      statusInput  true  "New status"
// @Success      200     {object}  Response{data=invoiceView}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /invoices/{id}/status [patch]
// @Security     BasicAuth
func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input statusInput
	if !decodeJSON(w, r, &input) {
		return
	}
	inv, err := h.svc.Invoices.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	h.writeInvoice(w, r, http.StatusOK, inv)
}

// DeleteInvoice deletes an invoice
// @Summary      Delete invoice
// @Description  Remove an invoice. Linked todos are kept and lose their invoice reference.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [delete]
// @Security     BasicAuth
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Invoices.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// DuplicateInvoice copies an invoice into a new draft
// @Summary      Duplicate invoice
// @Description  Create a draft copy of an invoice, dated today, with a new number.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      201  {object}  Response{data=invoiceView}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id}/duplicate [post]
// @Security     BasicAuth
func (h *Handler) DuplicateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Invoices.Duplicate(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	h.writeInvoice(w, r, http.StatusCreated, inv)
}

type previewInput struct {
	Items   []models.LineItem `json:"items"`
	TaxRate float64           `json:"tax_rate"`
}

type previewResult struct {
	Items []models.LineItem `json:"items"`
	models.Totals
}

// PreviewInvoice computes totals without saving
// @Summary      Preview invoice totals
// @Description  Compute line amounts, subtotal, tax and total exactly as saving would.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        preview  body      previewInput  true  "Items and tax rate"
// @Success      200      {object}  Response{data=previewResult}
// @Failure      400      {object}  Response{error=string}
// @Router       /invoices/preview [post]
// @Security     BasicAuth
func (h *Handler) PreviewInvoice(w http.ResponseWriter, r *http.Request) {
	var input previewInput
	if !decodeJSON(w, r, &input) {
		return
	}
	items := make([]models.LineItem, len(input.Items))
	for n, item := range input.Items {
		item.Amount = models.ComputeLineAmount(item.Quantity, item.Rate)
		items[n] = item
	}
	writeJSON(w, http.StatusOK, previewResult{
		Items:  items,
		Totals: h.svc.Invoices.Preview(items, input.TaxRate),
	})
}

// GetInvoiceStats returns invoice aggregates
// @Summary      Get invoice stats
// @Description  Revenue, paid and pending amounts, draft and overdue counts.
// @Tags         invoices
// @Produce      json
// @Success      200  {object}  Response{data=models.InvoiceStats}
// @Router       /invoices/stats [get]
// @Security     BasicAuth
func (h *Handler) GetInvoiceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Invoices.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListInvoiceTodos lists the todos linked to an invoice
// @Summary      List invoice todos
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=[]models.Todo}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id}/todos [get]
// @Security     BasicAuth
func (h *Handler) ListInvoiceTodos(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.Invoices.GetByID(r.Context(), id); err != nil {
		writeServiceError(w, r, "invoice", err)
		return
	}
	todos, err := h.svc.Todos.GetByInvoiceID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "todo", err)
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}
