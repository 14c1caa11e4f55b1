package handlers

import (
	"net/http"

	"github.com/satheeshds/invoicer/models"
	"golang.org/x/sync/errgroup"
)

// todoView is a todo with the number of its linked invoice.
type todoView struct {
	models.Todo
	InvoiceNumber string `json:"invoice_number"`
}

// ListTodos lists todos
// @Summary      List todos
// @Description  Get todos, newest first, with the number of the linked invoice.
// @Tags         todos
// @Produce      json
// @Param        status      query     string  false  "Filter by status (pending, in_progress, completed, cancelled or all)"
// @Param        priority    query     string  false  "Filter by priority (low, medium, high, urgent or all)"
// @Param        search      query     string  false  "Search by title or description"
// @Param        invoice_id  query     int     false  "Filter by invoice"
// @Success      200         {object}  Response{data=[]todoView}
// @Failure      400         {object}  Response{error=string}
// @Router       /todos [get]
// @Security     BasicAuth
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	invoiceID, ok := queryInt(w, r, "invoice_id")
	if !ok {
		return
	}
	filter := models.TodoFilter{
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
		Search:    q.Get("search"),
		InvoiceID: invoiceID,
	}

	var (
		todos    []models.Todo
		invoices []models.Invoice
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		todos, err = h.svc.Todos.GetAll(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = h.svc.Invoices.GetAll(ctx, models.InvoiceFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		writeServiceError(w, r, "todo", err)
		return
	}

	numbers := make(map[int]string, len(invoices))
	for _, inv := range invoices {
		numbers[inv.ID] = inv.Number
	}
	views := make([]todoView, 0, len(todos))
	for _, t := range todos {
		v := todoView{Todo: t}
		if t.InvoiceID != nil {
			v.InvoiceNumber = numbers[*t.InvoiceID]
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// GetTodo retrieves a single todo by ID
// @Summary      Get todo
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  Response{data=models.Todo}
// @Failure      404  {object}  Response{error=string}
// @Router       /todos/{id} [get]
// @Security     BasicAuth
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Todos.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "todo", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTodo creates a new todo
// @Summary      Create todo
// @Description  Create a todo, optionally linked to an invoice. Status defaults to pending and priority to medium.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        todo  body      models.TodoInput  true  "Todo details"
// @Success      201   {object}  Response{data=models.Todo}
// @Failure      400   {object}  Response{error=string}
// @Router       /todos [post]
// @Security     BasicAuth
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var input models.TodoInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.svc.Todos.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, "todo", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTodo updates an existing todo
// @Summary      Update todo
// @Description  Merge the supplied fields into a todo. The completed date follows status changes.
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Todo ID"
// @Param        todo  body      models.TodoPatch  true  "Fields to change"
// @Success      200   {object}  Response{data=models.Todo}
// @Failure      400   {object}  Response{error=string}
// @Failure      404   {object}  Response{error=string}
// @Router       /todos/{id} [put]
// @Security     BasicAuth
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch models.TodoPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	t, err := h.svc.Todos.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, "todo", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTodoStatus sets the status of a todo
// @Summary      Update todo status
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id      path      int          true  "Todo ID"
// @Param        status  body      statusInput  true  "New status"
// @Success      200     {object}  Response{data=models.Todo}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /todos/{id}/status [patch]
// @Security     BasicAuth
func (h *Handler) UpdateTodoStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input statusInput
	if !decodeJSON(w, r, &input) {
		return
	}
	t, err := h.svc.Todos.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		writeServiceError(w, r, "todo", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTodo deletes a todo
// @Summary      Delete todo
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /todos/{id} [delete]
// @Security     BasicAuth
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Todos.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "todo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
