package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/service"
)

// QuotationService is the quoting behaviour the HTTP layer needs.
type QuotationService interface {
	Create(ctx context.Context, in service.QuotationInput) (*models.Quotation, error)
	List(ctx context.Context) ([]models.Quotation, error)
	Get(ctx context.Context, id string) (*models.Quotation, error)
	Reply(ctx context.Context, id string, sender models.Sender, message string) (*models.Quotation, error)
	Quote(ctx context.Context, id string, in service.QuoteInput) (*models.Quotation, error)
	Approve(ctx context.Context, id string) (*models.Quotation, error)
	Reject(ctx context.Context, id string) (*models.Quotation, error)
}

// QuotationHandler serves the quotation endpoints. Customers see and
// answer only their own quotations; only they can approve or reject one.
type QuotationHandler struct {
	svc QuotationService
}

// NewQuotationHandler creates a QuotationHandler.
func NewQuotationHandler(svc QuotationService) *QuotationHandler {
	return &QuotationHandler{svc: svc}
}

type messageRequest struct {
	Message string `json:"message"`
}

// List handles GET /api/quotations
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	quotes := make([]models.Quotation, 0, len(all))
	claims := customerClaims(r)
	for _, q := range all {
		if claims == nil || q.CustomerID == claims.UserID {
			quotes = append(quotes, q)
		}
	}
	writeJSON(w, http.StatusOK, quotes)
}

// Create handles POST /api/quotations
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.QuotationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if claims := customerClaims(r); claims != nil {
		in.CustomerID = claims.UserID
	}
	q, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// Get handles GET /api/quotations/{id}
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if q, ok := h.visible(w, r); ok {
		writeJSON(w, http.StatusOK, q)
	}
}

// Reply handles POST /api/quotations/{id}/messages
func (h *QuotationHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	q, ok := h.visible(w, r)
	if !ok {
		return
	}
	sender := models.SenderBusiness
	if customerClaims(r) != nil {
		sender = models.SenderCustomer
	}
	h.respond(w, r)(h.svc.Reply(r.Context(), q.ID, sender, req.Message))
}

// Quote handles POST /api/quotations/{id}/quote
func (h *QuotationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var in service.QuoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respond(w, r)(h.svc.Quote(r.Context(), chi.URLParam(r, "id"), in))
}

// Approve handles POST /api/quotations/{id}/approve
func (h *QuotationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Approve)
}

// Reject handles POST /api/quotations/{id}/reject
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Reject)
}

func (h *QuotationHandler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*models.Quotation, error)) {
	if customerClaims(r) == nil {
		writeError(w, http.StatusForbidden, "only the customer can accept or decline a quote")
		return
	}
	q, ok := h.visible(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(fn(r.Context(), q.ID))
}

// visible loads the quotation in the URL, hiding other customers' quotes.
func (h *QuotationHandler) visible(w http.ResponseWriter, r *http.Request) (*models.Quotation, bool) {
	id := chi.URLParam(r, "id")
	q, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	if claims := customerClaims(r); claims != nil && q.CustomerID != claims.UserID {
		writeError(w, http.StatusNotFound, "quotation not found")
		return nil, false
	}
	return q, true
}

func (h *QuotationHandler) respond(w http.ResponseWriter, r *http.Request) func(*models.Quotation, error) {
	return func(q *models.Quotation, err error) {
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}
