package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/service"
)

// VehicleService is the vehicle behaviour the HTTP layer needs.
type VehicleService interface {
	List(ctx context.Context, ownerID string) ([]models.Vehicle, error)
	Due(ctx context.Context, ownerID string) ([]models.Vehicle, error)
	Get(ctx context.Context, id string) (*models.Vehicle, error)
	Create(ctx context.Context, in service.VehicleInput) (*models.Vehicle, error)
	Update(ctx context.Context, id string, in service.VehicleInput) (*models.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

// VehicleHandler serves the vehicle endpoints. Customers work on their own
// cars; staff may filter by ?owner=.
type VehicleHandler struct {
	svc VehicleService
}

// NewVehicleHandler creates a VehicleHandler.
func NewVehicleHandler(svc VehicleService) *VehicleHandler {
	return &VehicleHandler{svc: svc}
}

// List handles GET /api/vehicles
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.List)
}

// Due handles GET /api/vehicles/due
func (h *VehicleHandler) Due(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.Due)
}

func (h *VehicleHandler) list(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) ([]models.Vehicle, error)) {
	owner := r.URL.Query().Get("owner")
	if claims := customerClaims(r); claims != nil {
		owner = claims.UserID
	}
	vehicles, err := fn(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Create handles POST /api/vehicles
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.VehicleInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if claims := customerClaims(r); claims != nil {
		in.OwnerID = claims.UserID
	}
	v, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get handles GET /api/vehicles/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.visible(w, r); ok {
		writeJSON(w, http.StatusOK, v)
	}
}

// Update handles PUT /api/vehicles/{id}
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.VehicleInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	v, ok := h.visible(w, r)
	if !ok {
		return
	}
	updated, err := h.svc.Update(r.Context(), v.ID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/vehicles/{id}
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visible(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), v.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VehicleHandler) visible(w http.ResponseWriter, r *http.Request) (*models.Vehicle, bool) {
	id := chi.URLParam(r, "id")
	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if claims := customerClaims(r); claims != nil && v.OwnerID != claims.UserID {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return nil, false
	}
	return v, true
}
