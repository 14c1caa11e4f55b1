package handlers

import (
	"net/http"

	"github.com/satheeshds/invoicer/models"
)

// ListClients lists all clients
// @Summary      List clients
// @Description  Get all clients ordered by name, optionally filtered by name or email.
// @Tags         clients
// @Produce      json
// @Param        search  query     string  false  "Search by name or email"
// @Success      200     {object}  Response{data=[]models.Client}
// @Router       /clients [get]
// @Security     BasicAuth
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	var (
		clients []models.Client
		err     error
	)
	if q := r.URL.Query().Get("search"); q != "" {
		clients, err = h.svc.Clients.Search(r.Context(), q)
	} else {
		clients, err = h.svc.Clients.GetAll(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, "client", err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetClient retrieves a single client by ID
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  Response{data=models.Client}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [get]
// @Security     BasicAuth
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Clients.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateClient creates a new client
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.ClientInput  true  "Client details"
// @Success      201     {object}  Response{data=models.Client}
// @Failure      400     {object}  Response{error=string}
// @Router       /clients [post]
// @Security     BasicAuth
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var input models.ClientInput
	if !decodeJSON(w, r, &input) {
		return
	}
	c, err := h.svc.Clients.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, "client", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClient updates an existing client
// @Summary      Update client
// @Description  Merge the supplied fields into an existing client. Omitted fields are kept.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path      int                 true  "Client ID"
// @Param        client  body      models.ClientPatch  true  "Fields to change"
// @Success      200     {object}  Response{data=models.Client}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /clients/{id} [put]
// @Security     BasicAuth
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch models.ClientPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	c, err := h.svc.Clients.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, "client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteClient deletes a client
// @Summary      Delete client
// @Description  Delete a client. Its invoices are kept and lose their client reference.
// @Tags         clients
// @Param        id   path      int  true  "Client ID"
// @Produce      json
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [delete]
// @Security     BasicAuth
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Clients.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "client", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
