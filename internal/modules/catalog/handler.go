package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chisomo/mercato-backend/internal/modules/attribute"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/items", h.listItems)
		r.Post("/items", h.createItem)
		r.Get("/items/{id}", h.getItem)
		r.Put("/items/{id}", h.updateItem)
		r.Get("/items/{id}/variations", h.listVariations)
		r.Post("/items/{id}/variations/generate", h.generateVariations)
		r.Get("/variations/{id}", h.getVariation)
		r.Put("/variations/{id}", h.updateVariation)
		r.Delete("/variations/{id}", h.deleteVariation)
	})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filter := ListFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		SortBy:   r.URL.Query().Get("sort"),
		SortDesc: r.URL.Query().Get("dir") == "desc",
	}
	items, err := h.service.ListItems(r.Context(), tenantID, filter)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, items)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := h.service.CreateItem(r.Context(), tenantID, req)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusCreated, item)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	tenantID, id, err := tenantAndID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := h.service.GetItem(r.Context(), tenantID, id)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	tenantID, id, err := tenantAndID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := h.service.UpdateItem(r.Context(), tenantID, id, req)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) listVariations(w http.ResponseWriter, r *http.Request) {
	tenantID, itemID, err := tenantAndID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var scope VariationScope
	switch r.URL.Query().Get("scope") {
	case "", "active":
		scope = ScopeActive
	case "all":
		scope = ScopeAll
	case "deleted":
		scope = ScopeDeleted
	default:
		http.Error(w, "scope must be active, all or deleted", http.StatusBadRequest)
		return
	}
	variations, err := h.service.ListVariations(r.Context(), tenantID, itemID, scope)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, variations)
}

func (h *Handler) generateVariations(w http.ResponseWriter, r *http.Request) {
	tenantID, itemID, err := tenantAndID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req GenerateVariationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	variations, err := h.service.GenerateVariations(r.Context(), tenantID, itemID, req.AttributeIDs)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusCreated, variations)
}

func (h *Handler) getVariation(w http.ResponseWriter, r *http.Request) {
	tenantID, id, err := tenantAndID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := h.service.GetVariation(r.Context(), tenantID, id)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) updateVariation(w http.ResponseWriter, r *http.Request) {
	tenantID, id, err := tenantAndID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req UpdateVariationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := h.service.UpdateVariation(r.Context(), tenantID, id, req)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) deleteVariation(w http.ResponseWriter, r *http.Request) {
	tenantID, id, err := tenantAndID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteVariation(r.Context(), tenantID, id); err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tenantAndID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid id: %w", err)
	}
	return tenantID, id, nil
}

func tenantFrom(r *http.Request) (uuid.UUID, error) {
	tenantID, err := uuid.Parse(r.Header.Get("X-Tenant-ID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("missing or invalid X-Tenant-ID header")
	}
	return tenantID, nil
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, attribute.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, attribute.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
