package models

import (
	"strings"
	"time"
)

// Totals are the derived money values of an invoice.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// ComputeLineAmount is the amount of a single line.
func ComputeLineAmount(quantity int, rate float64) float64 {
	return float64(quantity) * rate
}

// ComputeTotals sums the line amounts and applies taxRate (a percentage).
// Amounts are recomputed from quantity and rate, never read from the items.
// Previews and saved invoices both go through here so they agree exactly.
func ComputeTotals(items []LineItem, taxRate float64) Totals {
	var t Totals
	for _, item := range items {
		t.Subtotal += ComputeLineAmount(item.Quantity, item.Rate)
	}
	t.TaxAmount = t.Subtotal * taxRate / 100
	t.Total = t.Subtotal + t.TaxAmount
	return t
}

// ApplyTotals overwrites every item amount and the invoice totals.
func (inv *Invoice) ApplyTotals() {
	for n := range inv.Items {
		inv.Items[n].Amount = ComputeLineAmount(inv.Items[n].Quantity, inv.Items[n].Rate)
	}
	t := ComputeTotals(inv.Items, inv.TaxRate)
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.Total = t.Total
}

// DisplayStatus is the label shown for an invoice at now. A sent invoice past
// its due date shows as Overdue; the stored status stays sent.
func DisplayStatus(status string, due Date, now time.Time) string {
	if status == InvoicePaid {
		return "Paid"
	}
	if status == InvoiceSent && !due.IsZero() && due.Before(now) {
		return "Overdue"
	}
	return capitalize(status)
}

// BadgeVariant is the style key matching DisplayStatus.
func BadgeVariant(status string, due Date, now time.Time) string {
	if status == InvoicePaid {
		return InvoicePaid
	}
	if status == InvoiceSent && !due.IsZero() && due.Before(now) {
		return "overdue"
	}
	return status
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// InvoiceStats are the aggregates shown on the dashboard.
type InvoiceStats struct {
	TotalRevenue  float64 `json:"total_revenue"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
	DraftCount    int     `json:"draft_count"`
	OverdueCount  int     `json:"overdue_count"`
	TotalInvoices int     `json:"total_invoices"`
}

// ComputeStats aggregates invoices at now. An empty slice yields zero stats.
func ComputeStats(invoices []Invoice, now time.Time) InvoiceStats {
	s := InvoiceStats{TotalInvoices: len(invoices)}
	for _, inv := range invoices {
		s.TotalRevenue += inv.Total
		switch inv.Status {
		case InvoicePaid:
			s.PaidAmount += inv.Total
		case InvoiceSent:
			s.PendingAmount += inv.Total
		case InvoiceDraft:
			s.DraftCount++
		}
		if inv.IsOverdue(now) {
			s.OverdueCount++
		}
	}
	return s
}
