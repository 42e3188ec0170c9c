package attribute

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes attribute registry HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/attributes", func(r chi.Router) {
		r.Get("/", h.listAttributes)
		r.Post("/", h.defineAttribute)
		r.Get("/{id}", h.getAttribute)
		r.Put("/{id}", h.updateAttribute)
		r.Get("/{id}/options", h.listOptions)
		r.Post("/{id}/options", h.defineOption)

		r.Route("/assignments/{ownerType}/{ownerID}", func(r chi.Router) {
			r.Get("/", h.listForDisplay)
			r.Post("/", h.assignBulk)
			r.Put("/{attributeID}", h.assignOne)
			r.Delete("/{attributeID}", h.removeOne)
		})
	})
}

func (h *Handler) listAttributes(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	configurableOnly := r.URL.Query().Get("configurable") == "true"
	attrs, err := h.service.ListAttributes(r.Context(), tenantID, configurableOnly)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, attrs)
}

func (h *Handler) defineAttribute(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req DefineAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := h.service.DefineAttribute(r.Context(), tenantID, req)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusCreated, a)
}

func (h *Handler) getAttribute(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := h.service.GetAttribute(r.Context(), tenantID, id)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) updateAttribute(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req UpdateAttributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := h.service.UpdateAttribute(r.Context(), tenantID, id, req)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) listOptions(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := h.service.ListOptions(r.Context(), tenantID, id)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, opts)
}

func (h *Handler) defineOption(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req DefineOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o, err := h.service.DefineOption(r.Context(), tenantID, id, req)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) listForDisplay(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.service.AttributesForDisplay(r.Context(), tenantID, owner)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, rows)
}

func (h *Handler) assignBulk(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body map[uuid.UUID]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.service.AssignAttributes(r.Context(), tenantID, owner, body)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) assignOne(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	attributeID, err := uuid.Parse(chi.URLParam(r, "attributeID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := h.service.AssignAttribute(r.Context(), tenantID, owner, attributeID, body.Value)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) removeOne(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	attributeID, err := uuid.Parse(chi.URLParam(r, "attributeID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	existed, err := h.service.RemoveAttribute(r.Context(), tenantID, owner, attributeID)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, map[string]bool{"removed": existed})
}

func ownerFrom(r *http.Request) (uuid.UUID, OwnerRef, error) {
	tenantID, err := tenantFrom(r)
	if err != nil {
		return uuid.Nil, OwnerRef{}, err
	}
	ownerID, err := uuid.Parse(chi.URLParam(r, "ownerID"))
	if err != nil {
		return uuid.Nil, OwnerRef{}, fmt.Errorf("invalid owner id: %w", err)
	}
	var ownerType OwnerType
	switch chi.URLParam(r, "ownerType") {
	case "items":
		ownerType = OwnerCatalogItem
	case "variations":
		ownerType = OwnerVariation
	default:
		return uuid.Nil, OwnerRef{}, fmt.Errorf("unknown owner type %q", chi.URLParam(r, "ownerType"))
	}
	return tenantID, OwnerRef{Type: ownerType, ID: ownerID}, nil
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
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
