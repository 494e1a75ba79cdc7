package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/service"
)

// InvoiceService is the invoice behaviour the HTTP layer needs.
type InvoiceService interface {
	Preview(in service.InvoiceInput) models.InvoiceTotals
	Create(ctx context.Context, in service.InvoiceInput) (*models.Invoice, error)
	Get(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, status, search string) ([]models.Invoice, error)
	Send(ctx context.Context, id string) (*models.Invoice, error)
	MarkPaid(ctx context.Context, id string) (*models.Invoice, error)
}

// InvoiceHandler serves the invoice endpoints.
type InvoiceHandler struct {
	svc InvoiceService
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(svc InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// Preview handles POST /api/invoices/preview
// It prices the line items without storing anything.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in service.InvoiceInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Preview(in))
}

// Create handles POST /api/invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.InvoiceInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	inv, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// List handles GET /api/invoices?status=&q=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	invoices, err := h.svc.List(r.Context(), params.Get("status"), params.Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

// Get handles GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// Send handles POST /api/invoices/{id}/send
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// MarkPaid handles POST /api/invoices/{id}/pay
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
