package handlers

import (
	"net/http"

	"github.com/satheeshds/invoicer/models"
	"golang.org/x/sync/errgroup"
)

// recentInvoiceCount is how many invoices the dashboard lists.
const recentInvoiceCount = 5

type dashboardData struct {
	Stats          models.InvoiceStats `json:"stats"`
	TotalClients   int                 `json:"total_clients"`
	RecentInvoices []invoiceView       `json:"recent_invoices"`
}

// GetDashboard retrieves dashboard summary statistics
// @Summary      Get dashboard
// @Description  Get invoice stats, the client count and the most recent invoices.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=dashboardData}
// @Failure      502  {object}  Response{error=string}
// @Router       /dashboard [get]
// @Security     BasicAuth
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		stats    models.InvoiceStats
		invoices []models.Invoice
		clients  []models.Client
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats, err = h.svc.Invoices.GetStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = h.svc.Invoices.GetAll(ctx, models.InvoiceFilter{})
		return err
	})
	g.Go(func() (err error) {
		clients, err = h.svc.Clients.GetAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeServiceError(w, r, "dashboard", err)
		return
	}

	names := make(map[int]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	if len(invoices) > recentInvoiceCount {
		invoices = invoices[:recentInvoiceCount]
	}
	writeJSON(w, http.StatusOK, dashboardData{
		Stats:          stats,
		TotalClients:   len(clients),
		RecentInvoices: invoiceViews(invoices, names, h.svc.Invoices.Now()),
	})
}
