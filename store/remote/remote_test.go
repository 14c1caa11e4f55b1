package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// recorded is one request seen by the fake record service.
type recorded struct {
	method string
	path   string
	header http.Header
	body   gjson.Result
}

// fakeService answers every request with the reply for "METHOD path".
type fakeService struct {
	mu       sync.Mutex
	replies  map[string]string
	requests []recorded
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: gjson.ParseBytes(raw)})
	reply, ok := f.replies[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"no such route"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(reply))
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeService) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore(t *testing.T, replies map[string]string) (*Store, *fakeService) {
	t.Helper()
	fake := &fakeService{replies: replies}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/", ProjectID: "proj-1", PublicKey: "pk-test"})
	require.NoError(t, err)
	return New(client), fake
}

func TestNewClient_RequiresBaseURLAndProject(t *testing.T) {
	_, err := NewClient(Config{ProjectID: "p"})
	assert.Error(t, err)
	_, err = NewClient(Config{BaseURL: "http://example.com"})
	assert.Error(t, err)
}

func TestGetClient(t *testing.T) {
	s, fake := newTestStore(t, map[string]string{
		"POST /records/client_c/get": `{"success":true,"data":{"Id":3,"Name":"Acme","email_c":"billing@acme.com","CreatedOn":"2024-01-02T09:00:00Z"}}`,
	})

	c, err := s.GetClient(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "billing@acme.com", c.Email)
	assert.Equal(t, 2024, c.CreatedAt.Year())

	req := fake.last()
	assert.Equal(t, "proj-1", req.header.Get("X-Project-Id"))
	assert.Equal(t, "Bearer pk-test", req.header.Get("Authorization"))
	assert.Equal(t, int64(3), req.body.Get("id").Int())
	assert.Equal(t, "Name", req.body.Get("fields.0.field.Name").String())
}

func TestGetClient_NullDataIsNotFound(t *testing.T) {
	s, _ := newTestStore(t, map[string]string{
		"POST /records/client_c/get": `{"success":true,"data":null}`,
	})

	_, err := s.GetClient(context.Background(), 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFetch_FailureIsBackendError(t *testing.T) {
	s, _ := newTestStore(t, map[string]string{
		"POST /records/client_c/fetch": `{"success":false,"message":"table is locked"}`,
	})

	_, err := s.ListClients(context.Background())

	var backend *store.BackendError
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, "table is locked", backend.Message)
}

func TestFetch_InvalidBodyIsBackendError(t *testing.T) {
	s, _ := newTestStore(t, map[string]string{
		"POST /records/invoice_c/fetch": `<html>bad gateway</html>`,
	})

	_, err := s.ListInvoices(context.Background())
	assert.True(t, store.IsBackend(err))
}

func TestCreateClient_RecordFailure(t *testing.T) {
	s, fake := newTestStore(t, map[string]string{
		"POST /records/client_c": `{"success":true,"results":[{"success":false,"errors":[{"fieldLabel":"Name","message":"is required"}],"message":"validation failed"}]}`,
	})

	_, err := s.CreateClient(context.Background(), models.Client{Name: ""})

	var backend *store.BackendError
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, "Name: is required; validation failed", backend.Message)
	assert.Equal(t, "", fake.last().body.Get("records.0.Name").String())
}

func TestCreateInvoice_EncodesAndDecodes(t *testing.T) {
	s, fake := newTestStore(t, map[string]string{
		"POST /records/invoice_c": `{"success":true,"results":[{"success":true,"data":{
			"Id":12,
			"client_id_c":{"Id":4,"Name":"Acme"},
			"number_c":"INV-012",
			"status_c":"sent",
			"issue_date_c":"2024-01-15",
			"due_date_c":"2024-02-14T00:00:00Z",
			"items_c":"[{\"description\":\"Design\",\"quantity\":2,\"rate\":50},{\"description\":\"Hosting\",\"quantity\":1,\"rate\":30}]",
			"tax_c":10
		}}]}`,
	})

	in := models.InvoiceInput{
		ClientID: intRef(4),
		Status:   models.InvoiceSent,
		Items:    []models.LineItem{{Description: "Design", Quantity: 2, Rate: 50}},
		TaxRate:  10,
	}
	inv, err := s.CreateInvoice(context.Background(), in.Invoice())
	require.NoError(t, err)

	assert.Equal(t, 12, inv.ID)
	require.NotNil(t, inv.ClientID)
	assert.Equal(t, 4, *inv.ClientID)
	assert.Equal(t, "2024-02-14", inv.DueDate.String())
	require.Len(t, inv.Items, 2)
	assert.Equal(t, 130.0, inv.Subtotal)
	assert.Equal(t, 143.0, inv.Total)

	sent := fake.last().body.Get("records.0")
	assert.Equal(t, int64(4), sent.Get("client_id_c").Int())
	assert.Equal(t, 10.0, sent.Get("tax_c").Float())
	assert.Equal(t, "Design", gjson.Parse(sent.Get("items_c").String()).Get("0.description").String())
}

func TestListTodos_BuildsFilter(t *testing.T) {
	s, fake := newTestStore(t, map[string]string{
		"POST /records/todo_c/fetch": `{"success":true,"data":[
			{"Id":2,"title_c":"Send invoice","status_c":"completed","priority_c":"high","invoice_id_c":5,"completed_date_c":"2024-02-02T08:30:00Z"}
		]}`,
	})

	todos, err := s.ListTodos(context.Background(), models.TodoFilter{
		Status:    models.TodoCompleted,
		Priority:  models.PriorityHigh,
		Search:    "invoice",
		InvoiceID: intRef(5),
	})
	require.NoError(t, err)
	require.Len(t, todos, 1)
	require.NotNil(t, todos[0].CompletedDate)
	assert.Equal(t, 5, *todos[0].InvoiceID)

	body := fake.last().body
	assert.Equal(t, "status_c", body.Get("where.0.FieldName").String())
	assert.Equal(t, "completed", body.Get("where.0.Values.0").String())
	assert.Equal(t, "priority_c", body.Get("where.1.FieldName").String())
	assert.Equal(t, "high", body.Get("where.1.Values.0").String())
	assert.Equal(t, "invoice_id_c", body.Get("where.2.FieldName").String())
	assert.Equal(t, "OR", body.Get("whereGroups.0.operator").String())
	assert.Equal(t, "description_c", body.Get("whereGroups.0.subGroups.1.conditions.0.fieldName").String())
	assert.Equal(t, "DESC", body.Get("orderBy.0.sorttype").String())
}

func TestListTodos_AllStatusSendsNoWhere(t *testing.T) {
	s, fake := newTestStore(t, map[string]string{
		"POST /records/todo_c/fetch": `{"success":true,"data":[]}`,
	})

	todos, err := s.ListTodos(context.Background(), models.TodoFilter{Status: "all", Priority: "all"})
	require.NoError(t, err)
	assert.Empty(t, todos)
	assert.False(t, fake.last().body.Get("where").Exists())
}

func TestDeleteInvoice_MissingSkipsDelete(t *testing.T) {
	s, fake := newTestStore(t, map[string]string{
		"POST /records/invoice_c/get": `{"success":true,"data":null}`,
	})

	err := s.DeleteInvoice(context.Background(), 3)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 1, fake.count())
}

func TestDeleteTodo(t *testing.T) {
	s, fake := newTestStore(t, map[string]string{
		"POST /records/todo_c/get": `{"success":true,"data":{"Id":3,"title_c":"x"}}`,
		"DELETE /records/todo_c":    `{"success":true,"results":[{"success":true}]}`,
	})

	require.NoError(t, s.DeleteTodo(context.Background(), 3))
	assert.Equal(t, int64(3), fake.last().body.Get("RecordIds.0").Int())
}

func TestDecodeLookup(t *testing.T) {
	assert.Nil(t, decodeLookup(gjson.Parse(`null`)))
	assert.Nil(t, decodeLookup(gjson.Parse(`0`)))
	assert.Equal(t, 7, *decodeLookup(gjson.Parse(`7`)))
	assert.Equal(t, 8, *decodeLookup(gjson.Parse(`{"Id":8,"Name":"x"}`)))
}

func TestDecodeItems(t *testing.T) {
	items, err := decodeItems(gjson.Parse(`[{"description":"a","quantity":1,"rate":2}]`))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = decodeItems(gjson.Parse(`"[{\"description\":\"a\"}]"`))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = decodeItems(gjson.Result{})
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = decodeItems(gjson.Parse(`null`))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = decodeItems(gjson.Parse(`"not json"`))
	assert.Error(t, err)
}

func TestGetInvoice_MalformedItemsIsBackendError(t *testing.T) {
	s, _ := newTestStore(t, map[string]string{
		"POST /records/invoice_c/get": `{"success":true,"data":{"Id":7,"number_c":"INV-007","status_c":"draft","items_c":"[{broken","tax_c":10}}`,
	})

	_, err := s.GetInvoice(context.Background(), 7)

	var backend *store.BackendError
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, "decode invoice", backend.Op)
	assert.Equal(t, "invoice 7 has malformed items_c", backend.Message)
}

func intRef(v int) *int { return &v }
