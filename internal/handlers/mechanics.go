package handlers

import (
	"context"
	"net/http"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/service"
)

// MechanicService is the staff behaviour the HTTP layer needs.
type MechanicService interface {
	List(ctx context.Context) ([]models.Mechanic, error)
	Create(ctx context.Context, in service.MechanicInput) (*models.Mechanic, error)
}

// MechanicHandler serves the mechanic endpoints.
type MechanicHandler struct {
	svc MechanicService
}

// NewMechanicHandler creates a MechanicHandler.
func NewMechanicHandler(svc MechanicService) *MechanicHandler {
	return &MechanicHandler{svc: svc}
}

// List handles GET /api/mechanics
func (h *MechanicHandler) List(w http.ResponseWriter, r *http.Request) {
	mechanics, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if mechanics == nil {
		mechanics = []models.Mechanic{}
	}
	writeJSON(w, http.StatusOK, mechanics)
}

// Create handles POST /api/mechanics
func (h *MechanicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.MechanicInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	m, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
