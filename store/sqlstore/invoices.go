package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

const invoiceSelectQuery = `SELECT id, client_id, number, status, issue_date, due_date, expiry_date,
		subtotal, tax_rate, tax_amount, total, notes, remarks, created_at, updated_at
		FROM invoices`

const itemSelectQuery = `SELECT invoice_id, position, description, quantity, rate, amount FROM invoice_items`

type invoiceRow struct {
	ID         int            `db:"id"`
	ClientID   sql.NullInt64  `db:"client_id"`
	Number     string         `db:"number"`
	Status     string         `db:"status"`
	IssueDate  sql.NullString `db:"issue_date"`
	DueDate    sql.NullString `db:"due_date"`
	ExpiryDate sql.NullString `db:"expiry_date"`
	Subtotal   float64        `db:"subtotal"`
	TaxRate    float64        `db:"tax_rate"`
	TaxAmount  float64        `db:"tax_amount"`
	Total      float64        `db:"total"`
	Notes      string         `db:"notes"`
	Remarks    string         `db:"remarks"`
	CreatedAt  string         `db:"created_at"`
	UpdatedAt  string         `db:"updated_at"`
}

type itemRow struct {
	InvoiceID   int     `db:"invoice_id"`
	Position    int     `db:"position"`
	Description string  `db:"description"`
	Quantity    int     `db:"quantity"`
	Rate        float64 `db:"rate"`
	Amount      float64 `db:"amount"`
}

func (r invoiceRow) model(items []models.LineItem) models.Invoice {
	if items == nil {
		items = []models.LineItem{}
	}
	return models.Invoice{
		ID:         r.ID,
		ClientID:   intPtr(r.ClientID),
		Number:     r.Number,
		Status:     r.Status,
		IssueDate:  scanDate(r.IssueDate),
		DueDate:    scanDate(r.DueDate),
		ExpiryDate: scanDate(r.ExpiryDate),
		Items:      items,
		Subtotal:   r.Subtotal,
		TaxRate:    r.TaxRate,
		TaxAmount:  r.TaxAmount,
		Total:      r.Total,
		Notes:      r.Notes,
		Remarks:    r.Remarks,
		CreatedAt:  parseStamp(r.CreatedAt),
		UpdatedAt:  parseStamp(r.UpdatedAt),
	}
}

func (r itemRow) model() models.LineItem {
	return models.LineItem{Description: r.Description, Quantity: r.Quantity, Rate: r.Rate, Amount: r.Amount}
}

func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var rows []invoiceRow
	if err := s.db.SelectContext(ctx, &rows, invoiceSelectQuery+" ORDER BY issue_date DESC, id DESC"); err != nil {
		return nil, backendErr("list invoices", err)
	}
	var items []itemRow
	if err := s.db.SelectContext(ctx, &items, itemSelectQuery+" ORDER BY invoice_id, position"); err != nil {
		return nil, backendErr("list invoice items", err)
	}
	byInvoice := make(map[int][]models.LineItem)
	for _, it := range items {
		byInvoice[it.InvoiceID] = append(byInvoice[it.InvoiceID], it.model())
	}
	invoices := make([]models.Invoice, 0, len(rows))
	for _, r := range rows {
		invoices = append(invoices, r.model(byInvoice[r.ID]))
	}
	return invoices, nil
}

func (s *Store) GetInvoice(ctx context.Context, id int) (models.Invoice, error) {
	var r invoiceRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(invoiceSelectQuery+" WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invoice{}, store.NotFound("invoice", id)
	}
	if err != nil {
		return models.Invoice{}, backendErr("get invoice", err)
	}
	var items []itemRow
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(itemSelectQuery+" WHERE invoice_id = ? ORDER BY position"), id); err != nil {
		return models.Invoice{}, backendErr("get invoice items", err)
	}
	lines := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.model())
	}
	return r.model(lines), nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	now := s.stamp()
	var id int
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if id, err = nextID(ctx, tx, "invoices"); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO invoices (id, client_id, number, status, issue_date, due_date, expiry_date,
			subtotal, tax_rate, tax_amount, total, notes, remarks, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			id, nullInt(inv.ClientID), inv.Number, inv.Status, nullDate(inv.IssueDate), nullDate(inv.DueDate), nullDate(inv.ExpiryDate),
			inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total, inv.Notes, inv.Remarks, now, now)
		if err != nil {
			return err
		}
		return insertItems(ctx, tx, id, inv.Items)
	})
	if err != nil {
		return models.Invoice{}, backendErr("create invoice", err)
	}
	return s.GetInvoice(ctx, id)
}

func (s *Store) UpdateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE invoices SET client_id = ?, number = ?, status = ?, issue_date = ?,
			due_date = ?, expiry_date = ?, subtotal = ?, tax_rate = ?, tax_amount = ?, total = ?, notes = ?, remarks = ?,
			updated_at = ? WHERE id = ?`),
			nullInt(inv.ClientID), inv.Number, inv.Status, nullDate(inv.IssueDate), nullDate(inv.DueDate), nullDate(inv.ExpiryDate),
			inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total, inv.Notes, inv.Remarks, s.stamp(), inv.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.NotFound("invoice", inv.ID)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM invoice_items WHERE invoice_id = ?"), inv.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, inv.ID, inv.Items)
	})
	if errors.Is(err, store.ErrNotFound) {
		return models.Invoice{}, err
	}
	if err != nil {
		return models.Invoice{}, backendErr("update invoice", err)
	}
	return s.GetInvoice(ctx, inv.ID)
}

func (s *Store) DeleteInvoice(ctx context.Context, id int) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM invoice_items WHERE invoice_id = ?"), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM invoices WHERE id = ?"), id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.NotFound("invoice", id)
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err != nil {
		return backendErr("delete invoice", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, invoiceID int, items []models.LineItem) error {
	q := tx.Rebind(`INSERT INTO invoice_items (invoice_id, position, description, quantity, rate, amount)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for n, it := range items {
		if _, err := tx.ExecContext(ctx, q, invoiceID, n, it.Description, it.Quantity, it.Rate, it.Amount); err != nil {
			return err
		}
	}
	return nil
}
