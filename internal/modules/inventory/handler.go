package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes inventory ledger HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stock/{ownerType}/{ownerID}", func(r chi.Router) {
		r.Get("/available", h.available)
		r.Get("/adjustments", h.history)
		r.Post("/reserve", h.reserve)
		r.Post("/release", h.release)
		r.Post("/sale", h.sale)
		r.Post("/return", h.ret)
		r.Post("/adjust", h.adjust)
	})
}

// quantityRequest is shared by reserve/release/sale/return bodies.
type quantityRequest struct {
	Quantity    int    `json:"quantity"`
	ReferenceID string `json:"reference_id"`
}

func (h *Handler) available(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	available, err := h.service.Available(r.Context(), tenantID, owner)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	body := map[string]any{"available": available}
	if available == Unlimited {
		body = map[string]any{"available": nil, "unlimited": true}
	}
	respond(w, http.StatusOK, body)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	adjustments, err := h.service.History(r.Context(), tenantID, owner)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, adjustments)
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.Reserve(r.Context(), tenantID, owner, req.Quantity); err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, map[string]bool{"reserved": true})
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.Release(r.Context(), tenantID, owner, req.Quantity); err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusOK, map[string]bool{"released": true})
}

func (h *Handler) sale(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userID, err := userFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	adj, err := h.service.DecrementForSale(r.Context(), tenantID, owner, req.Quantity, req.ReferenceID, userID)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusCreated, adj)
}

func (h *Handler) ret(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userID, err := userFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	adj, err := h.service.IncrementForReturn(r.Context(), tenantID, owner, req.Quantity, req.ReferenceID, userID)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusCreated, adj)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	tenantID, owner, err := ownerFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	userID, err := userFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	adj, err := h.service.Adjust(r.Context(), tenantID, owner, req, userID)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	respond(w, http.StatusCreated, adj)
}

func ownerFrom(r *http.Request) (uuid.UUID, OwnerRef, error) {
	tenantID, err := uuid.Parse(r.Header.Get("X-Tenant-ID"))
	if err != nil {
		return uuid.Nil, OwnerRef{}, fmt.Errorf("missing or invalid X-Tenant-ID header")
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

func userFrom(r *http.Request) (uuid.UUID, error) {
	userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("missing or invalid X-User-ID header")
	}
	return userID, nil
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTrackingDisabled), errors.Is(err, ErrInsufficientStock):
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
