package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/tidwall/gjson"
)

// Record service tables.
const (
	clientTable  = "client_c"
	invoiceTable = "invoice_c"
	todoTable    = "todo_c"
)

var (
	clientFields = fields("Name", "email_c", "address_c", "phone_c", "CreatedOn", "ModifiedOn")

	invoiceFields = fields("Name", "client_id_c", "number_c", "status_c", "issue_date_c", "due_date_c",
		"expiry_date_c", "items_c", "subtotal_c", "tax_c", "total_c", "notes_c", "remarks_c",
		"CreatedOn", "ModifiedOn")

	todoFields = fields("Name", "invoice_id_c", "title_c", "description_c", "status_c", "priority_c",
		"due_date_c", "completed_date_c", "assignee_c", "Tags", "CreatedOn", "ModifiedOn")
)

// Store implements the store interfaces on the record service.
type Store struct {
	client *Client
}

func New(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) Stores() store.Stores {
	return store.Stores{Clients: s, Invoices: s, Todos: s}
}

// Clients

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	data, err := s.client.FetchRecords(ctx, clientTable, FetchParams{
		Fields:  clientFields,
		OrderBy: []OrderBy{{FieldName: "Name", SortType: "ASC"}},
	})
	if err != nil {
		return nil, err
	}
	clients := make([]models.Client, 0, len(data))
	for _, r := range data {
		clients = append(clients, decodeClient(r))
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id int) (models.Client, error) {
	r, ok, err := s.client.GetRecordByID(ctx, clientTable, id, clientFields)
	if err != nil {
		return models.Client{}, err
	}
	if !ok {
		return models.Client{}, store.NotFound("client", id)
	}
	return decodeClient(r), nil
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	r, err := s.client.CreateRecord(ctx, clientTable, encodeClient(c))
	if err != nil {
		return models.Client{}, err
	}
	return decodeClient(r), nil
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	rec := encodeClient(c)
	rec["Id"] = c.ID
	r, err := s.client.UpdateRecord(ctx, clientTable, rec)
	if err != nil {
		return models.Client{}, err
	}
	return decodeClient(r), nil
}

func (s *Store) DeleteClient(ctx context.Context, id int) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}
	return s.client.DeleteRecord(ctx, clientTable, id)
}

func encodeClient(c models.Client) map[string]any {
	return map[string]any{
		"Name":      c.Name,
		"email_c":   c.Email,
		"address_c": c.Address,
		"phone_c":   c.Phone,
	}
}

func decodeClient(r gjson.Result) models.Client {
	return models.Client{
		ID:        int(r.Get("Id").Int()),
		Name:      r.Get("Name").String(),
		Email:     r.Get("email_c").String(),
		Address:   r.Get("address_c").String(),
		Phone:     r.Get("phone_c").String(),
		CreatedAt: decodeTime(r.Get("CreatedOn")),
		UpdatedAt: decodeTime(r.Get("ModifiedOn")),
	}
}

// Invoices

func (s *Store) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	data, err := s.client.FetchRecords(ctx, invoiceTable, FetchParams{
		Fields:  invoiceFields,
		OrderBy: []OrderBy{{FieldName: "issue_date_c", SortType: "DESC"}},
	})
	if err != nil {
		return nil, err
	}
	invoices := make([]models.Invoice, 0, len(data))
	for _, r := range data {
		inv, err := decodeInvoice(r)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (s *Store) GetInvoice(ctx context.Context, id int) (models.Invoice, error) {
	r, ok, err := s.client.GetRecordByID(ctx, invoiceTable, id, invoiceFields)
	if err != nil {
		return models.Invoice{}, err
	}
	if !ok {
		return models.Invoice{}, store.NotFound("invoice", id)
	}
	return decodeInvoice(r)
}

func (s *Store) CreateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	rec, err := encodeInvoice(inv)
	if err != nil {
		return models.Invoice{}, err
	}
	r, err := s.client.CreateRecord(ctx, invoiceTable, rec)
	if err != nil {
		return models.Invoice{}, err
	}
	return decodeInvoice(r)
}

func (s *Store) UpdateInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	rec, err := encodeInvoice(inv)
	if err != nil {
		return models.Invoice{}, err
	}
	rec["Id"] = inv.ID
	r, err := s.client.UpdateRecord(ctx, invoiceTable, rec)
	if err != nil {
		return models.Invoice{}, err
	}
	return decodeInvoice(r)
}

func (s *Store) DeleteInvoice(ctx context.Context, id int) error {
	if _, err := s.GetInvoice(ctx, id); err != nil {
		return err
	}
	return s.client.DeleteRecord(ctx, invoiceTable, id)
}

// encodeInvoice stores tax_c as the percentage; the tax amount is derived
// again on read with the same formula.
func encodeInvoice(inv models.Invoice) (map[string]any, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return nil, &store.BackendError{Op: "encode invoice", Err: err}
	}
	name := inv.Number
	if name == "" {
		name = "Invoice"
	}
	return map[string]any{
		"Name":          name,
		"client_id_c":   inv.ClientID,
		"number_c":      inv.Number,
		"status_c":      inv.Status,
		"issue_date_c":  dateValue(inv.IssueDate),
		"due_date_c":    dateValue(inv.DueDate),
		"expiry_date_c": dateValue(inv.ExpiryDate),
		"items_c":       string(items),
		"subtotal_c":    inv.Subtotal,
		"tax_c":         inv.TaxRate,
		"total_c":       inv.Total,
		"notes_c":       inv.Notes,
		"remarks_c":     inv.Remarks,
	}, nil
}

// decodeInvoice fails when items_c is unreadable; an empty item list would
// zero the totals and make the invoice impossible to update.
func decodeInvoice(r gjson.Result) (models.Invoice, error) {
	id := int(r.Get("Id").Int())
	items, err := decodeItems(r.Get("items_c"))
	if err != nil {
		return models.Invoice{}, &store.BackendError{
			Op:      "decode invoice",
			Message: fmt.Sprintf("invoice %d has malformed items_c", id),
			Err:     err,
		}
	}
	inv := models.Invoice{
		ID:         id,
		ClientID:   decodeLookup(r.Get("client_id_c")),
		Number:     r.Get("number_c").String(),
		Status:     r.Get("status_c").String(),
		IssueDate:  decodeDate(r.Get("issue_date_c")),
		DueDate:    decodeDate(r.Get("due_date_c")),
		ExpiryDate: decodeDate(r.Get("expiry_date_c")),
		Items:      items,
		TaxRate:    r.Get("tax_c").Float(),
		Notes:      r.Get("notes_c").String(),
		Remarks:    r.Get("remarks_c").String(),
		CreatedAt:  decodeTime(r.Get("CreatedOn")),
		UpdatedAt:  decodeTime(r.Get("ModifiedOn")),
	}
	inv.ApplyTotals()
	return inv, nil
}

// decodeItems accepts items_c either as a JSON string or an inline array.
// A missing value is an empty list.
func decodeItems(v gjson.Result) ([]models.LineItem, error) {
	raw := v.Raw
	if v.Type == gjson.String {
		raw = v.String()
	}
	items := []models.LineItem{}
	if strings.TrimSpace(raw) == "" || v.Type == gjson.Null {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.LineItem{}
	}
	return items, nil
}

// Todos

// ListTodos evaluates f on the record service. Search matches title OR
// description; the other filters are AND-ed.
func (s *Store) ListTodos(ctx context.Context, f models.TodoFilter) ([]models.Todo, error) {
	params := FetchParams{
		Fields:  todoFields,
		OrderBy: []OrderBy{{FieldName: "CreatedOn", SortType: "DESC"}},
	}
	if f.Status != "" && f.Status != "all" {
		params.Where = append(params.Where, equalTo("status_c", f.Status))
	}
	if f.Priority != "" && f.Priority != "all" {
		params.Where = append(params.Where, equalTo("priority_c", f.Priority))
	}
	if f.InvoiceID != nil {
		params.Where = append(params.Where, equalTo("invoice_id_c", *f.InvoiceID))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		params.WhereGroups = []WhereGroup{containsAny(q, "title_c", "description_c")}
	}
	data, err := s.client.FetchRecords(ctx, todoTable, params)
	if err != nil {
		return nil, err
	}
	todos := make([]models.Todo, 0, len(data))
	for _, r := range data {
		todos = append(todos, decodeTodo(r))
	}
	return todos, nil
}

func (s *Store) GetTodo(ctx context.Context, id int) (models.Todo, error) {
	r, ok, err := s.client.GetRecordByID(ctx, todoTable, id, todoFields)
	if err != nil {
		return models.Todo{}, err
	}
	if !ok {
		return models.Todo{}, store.NotFound("todo", id)
	}
	return decodeTodo(r), nil
}

func (s *Store) CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	r, err := s.client.CreateRecord(ctx, todoTable, encodeTodo(t))
	if err != nil {
		return models.Todo{}, err
	}
	return decodeTodo(r), nil
}

func (s *Store) UpdateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	rec := encodeTodo(t)
	rec["Id"] = t.ID
	r, err := s.client.UpdateRecord(ctx, todoTable, rec)
	if err != nil {
		return models.Todo{}, err
	}
	return decodeTodo(r), nil
}

func (s *Store) DeleteTodo(ctx context.Context, id int) error {
	if _, err := s.GetTodo(ctx, id); err != nil {
		return err
	}
	return s.client.DeleteRecord(ctx, todoTable, id)
}

func encodeTodo(t models.Todo) map[string]any {
	var due any
	if t.DueDate != nil {
		due = dateValue(*t.DueDate)
	}
	var completed any
	if t.CompletedDate != nil {
		completed = t.CompletedDate.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"Name":             t.Title,
		"invoice_id_c":     t.InvoiceID,
		"title_c":          t.Title,
		"description_c":    t.Description,
		"status_c":         t.Status,
		"priority_c":       t.Priority,
		"due_date_c":       due,
		"completed_date_c": completed,
		"assignee_c":       t.Assignee,
		"Tags":             t.Tags,
	}
}

func decodeTodo(r gjson.Result) models.Todo {
	t := models.Todo{
		ID:          int(r.Get("Id").Int()),
		InvoiceID:   decodeLookup(r.Get("invoice_id_c")),
		Title:       r.Get("title_c").String(),
		Description: r.Get("description_c").String(),
		Status:      r.Get("status_c").String(),
		Priority:    r.Get("priority_c").String(),
		Assignee:    r.Get("assignee_c").String(),
		Tags:        r.Get("Tags").String(),
		CreatedAt:   decodeTime(r.Get("CreatedOn")),
		UpdatedAt:   decodeTime(r.Get("ModifiedOn")),
	}
	if d := decodeDate(r.Get("due_date_c")); !d.IsZero() {
		t.DueDate = &d
	}
	if c := decodeTime(r.Get("completed_date_c")); !c.IsZero() {
		t.CompletedDate = &c
	}
	return t
}

// Field decoding

// decodeLookup reads a reference field, which the service returns either as
// a bare ID or as {"Id": n, "Name": "..."}.
func decodeLookup(v gjson.Result) *int {
	if v.IsObject() {
		v = v.Get("Id")
	}
	if v.Type != gjson.Number || v.Int() <= 0 {
		return nil
	}
	id := int(v.Int())
	return &id
}

func decodeDate(v gjson.Result) models.Date {
	if v.Type != gjson.String || v.String() == "" {
		return models.Date{}
	}
	d, err := models.ParseDate(v.String())
	if err != nil {
		return models.Date{}
	}
	return d
}

func decodeTime(v gjson.Result) time.Time {
	if v.Type != gjson.String || v.String() == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v.String())
	if err != nil {
		return time.Time{}
	}
	return t
}

func dateValue(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
