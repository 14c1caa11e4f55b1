package models

import (
	"fmt"
	"strings"
	"time"
)

// Invoice statuses. Any status may be set from any other.
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
)

// LineItem is one billed line of an invoice. Amount is always derived from
// Quantity and Rate.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Invoice represents a receivable invoice to a client.
type Invoice struct {
	ID         int        `json:"id"`
	ClientID   *int       `json:"client_id"`
	Number     string     `json:"number"`
	Status     string     `json:"status"`
	IssueDate  Date       `json:"issue_date"`
	DueDate    Date       `json:"due_date"`
	ExpiryDate Date       `json:"expiry_date"`
	Items      []LineItem `json:"items"`
	Subtotal   float64    `json:"subtotal"`
	TaxRate    float64    `json:"tax_rate"`   // percent
	TaxAmount  float64    `json:"tax_amount"` // absolute
	Total      float64    `json:"total"`
	Notes      string     `json:"notes"`
	Remarks    string     `json:"remarks"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// InvoiceInput is used for creating invoices. Amounts and totals are not
// accepted from callers; they are recomputed from Items and TaxRate.
type InvoiceInput struct {
	ClientID   *int       `json:"client_id"`
	Number     string     `json:"number"`
	Status     string     `json:"status"`
	IssueDate  Date       `json:"issue_date"`
	DueDate    Date       `json:"due_date"`
	ExpiryDate Date       `json:"expiry_date"`
	Items      []LineItem `json:"items"`
	TaxRate    float64    `json:"tax_rate"`
	Notes      string     `json:"notes"`
	Remarks    string     `json:"remarks"`
}

func (i *InvoiceInput) Validate() string {
	if i.Status == "" {
		i.Status = InvoiceDraft
	}
	i.Number = strings.TrimSpace(i.Number)
	if i.ClientID == nil || *i.ClientID <= 0 {
		return "client_id is required"
	}
	return i.Invoice().Validate()
}

// Invoice builds the record stored for this input, totals included.
func (i *InvoiceInput) Invoice() Invoice {
	inv := Invoice{
		ClientID:   i.ClientID,
		Number:     i.Number,
		Status:     i.Status,
		IssueDate:  i.IssueDate,
		DueDate:    i.DueDate,
		ExpiryDate: i.ExpiryDate,
		Items:      append([]LineItem(nil), i.Items...),
		TaxRate:    i.TaxRate,
		Notes:      i.Notes,
		Remarks:    i.Remarks,
	}
	inv.ApplyTotals()
	return inv
}

// InvoicePatch carries the fields supplied on update.
type InvoicePatch struct {
	ClientID   *int        `json:"client_id"`
	Number     *string     `json:"number"`
	Status     *string     `json:"status"`
	IssueDate  *Date       `json:"issue_date"`
	DueDate    *Date       `json:"due_date"`
	ExpiryDate *Date       `json:"expiry_date"`
	Items      *[]LineItem `json:"items"`
	TaxRate    *float64    `json:"tax_rate"`
	Notes      *string     `json:"notes"`
	Remarks    *string     `json:"remarks"`
}

// Apply merges the patch into inv and recomputes totals.
func (p InvoicePatch) Apply(inv Invoice) Invoice {
	if p.ClientID != nil {
		id := *p.ClientID
		inv.ClientID = &id
	}
	if p.Number != nil {
		inv.Number = strings.TrimSpace(*p.Number)
	}
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.IssueDate != nil {
		inv.IssueDate = *p.IssueDate
	}
	if p.DueDate != nil {
		inv.DueDate = *p.DueDate
	}
	if p.ExpiryDate != nil {
		inv.ExpiryDate = *p.ExpiryDate
	}
	if p.Items != nil {
		inv.Items = append([]LineItem(nil), (*p.Items)...)
	}
	if p.TaxRate != nil {
		inv.TaxRate = *p.TaxRate
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
	if p.Remarks != nil {
		inv.Remarks = *p.Remarks
	}
	inv.ApplyTotals()
	return inv
}

// Validate checks a record before it is written. The client reference is
// only required on input; it is cleared when the client is deleted.
func (inv Invoice) Validate() string {
	if inv.ClientID != nil && *inv.ClientID <= 0 {
		return "client_id must be positive"
	}
	if !ValidInvoiceStatus(inv.Status) {
		return "status must be one of: draft, sent, paid"
	}
	if len(inv.Items) == 0 {
		return "at least one item is required"
	}
	for n, item := range inv.Items {
		if strings.TrimSpace(item.Description) == "" {
			return fmt.Sprintf("items[%d].description is required", n)
		}
		if item.Rate < 0 {
			return fmt.Sprintf("items[%d].rate must be non-negative", n)
		}
	}
	if inv.TaxRate < 0 {
		return "tax_rate must be non-negative"
	}
	return ""
}

func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid:
		return true
	}
	return false
}

// IsOverdue reports whether a sent invoice is past its due date at now.
func (inv Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == InvoiceSent && !inv.DueDate.IsZero() && inv.DueDate.Before(now)
}

// InvoiceFilter narrows invoice listings. Search matches the number or the
// resolved client name.
type InvoiceFilter struct {
	Status   string
	Search   string
	ClientID *int
}

// Match reports whether inv passes every set filter. clientName is the
// resolved name of inv's client, empty when unknown.
func (f InvoiceFilter) Match(inv Invoice, clientName string) bool {
	if f.Status != "" && f.Status != "all" && inv.Status != f.Status {
		return false
	}
	if f.ClientID != nil && (inv.ClientID == nil || *inv.ClientID != *f.ClientID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(inv.Number), q) ||
			strings.Contains(strings.ToLower(clientName), q)
	}
	return true
}
