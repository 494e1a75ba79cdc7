package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ukydev/garage-hub/internal/middleware"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
	"github.com/ukydev/garage-hub/internal/query"
	"github.com/ukydev/garage-hub/internal/schedule"
	"github.com/ukydev/garage-hub/internal/service"
)

// BookingService is the booking behaviour the HTTP layer needs.
type BookingService interface {
	Create(ctx context.Context, in service.BookingInput) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, q query.Query) (query.Result, error)
	Upcoming(ctx context.Context, day time.Time) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus, reason string) (*models.Booking, error)
	MarkArrival(ctx context.Context, id string, arrived bool) (*models.Booking, error)
	AssignMechanic(ctx context.Context, id, mechanicID string) (*models.Booking, error)
	Reschedule(ctx context.Context, id, date, at string) (*models.Booking, error)
	Complete(ctx context.Context, id string, actualCost money.Amount) (*models.Booking, error)
	Notify(ctx context.Context, id string, kind models.NotificationType) (*models.Booking, error)
	Slots(ctx context.Context, date time.Time) ([]schedule.TimeSlot, error)
}

// BookingHandler serves the booking and schedule endpoints. Customers only
// ever see bookings made under their own account.
type BookingHandler struct {
	svc BookingService
	now func() time.Time
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{svc: svc, now: time.Now}
}

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
	Reason string               `json:"reason"`
}

type arrivalRequest struct {
	Arrived bool `json:"arrived"`
}

type assignRequest struct {
	MechanicID string `json:"mechanic_id"`
}

type rescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

type completeRequest struct {
	ActualCost money.Amount `json:"actual_cost"`
}

type notifyRequest struct {
	Type models.NotificationType `json:"type"`
}

// List handles GET /api/bookings
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := query.Query{
		Search:     params.Get("q"),
		Range:      query.RangeMode(params.Get("range")),
		Status:     models.BookingStatus(params.Get("status")),
		Source:     models.BookingSource(params.Get("source")),
		MechanicID: params.Get("mechanic"),
		Priority:   models.Priority(params.Get("priority")),
	}
	if date := params.Get("date"); date != "" {
		ref, err := service.ParseDate(date)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		q.Reference = ref
	}

	res, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if claims := customerClaims(r); claims != nil {
		res.Items = ownBookings(res.Items, claims.UserID)
		res.Stats = query.Summarise(res.Items)
	}
	if res.Items == nil {
		res.Items = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, res)
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.BookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if claims := customerClaims(r); claims != nil {
		in.CustomerID = claims.UserID
		in.Source = models.SourceCustomer
		in.MechanicID = ""
	}

	b, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Get handles GET /api/bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if claims := customerClaims(r); claims != nil && b.CustomerID != claims.UserID {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Upcoming handles GET /api/bookings/upcoming?date=
func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r, "date", h.now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items, err := h.svc.Upcoming(r.Context(), day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if claims := customerClaims(r); claims != nil {
		items = ownBookings(items, claims.UserID)
	}
	if items == nil {
		items = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, items)
}

// UpdateStatus handles PATCH /api/bookings/{id}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respond(w, r)(h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Reason))
}

// MarkArrival handles POST /api/bookings/{id}/arrival
func (h *BookingHandler) MarkArrival(w http.ResponseWriter, r *http.Request) {
	var req arrivalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respond(w, r)(h.svc.MarkArrival(r.Context(), chi.URLParam(r, "id"), req.Arrived))
}

// AssignMechanic handles POST /api/bookings/{id}/assign
func (h *BookingHandler) AssignMechanic(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.MechanicID == "" {
		writeError(w, http.StatusBadRequest, "mechanic_id is required")
		return
	}
	h.respond(w, r)(h.svc.AssignMechanic(r.Context(), chi.URLParam(r, "id"), req.MechanicID))
}

// Reschedule handles POST /api/bookings/{id}/reschedule
func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respond(w, r)(h.svc.Reschedule(r.Context(), chi.URLParam(r, "id"), req.ScheduledDate, req.ScheduledTime))
}

// Complete handles POST /api/bookings/{id}/complete
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respond(w, r)(h.svc.Complete(r.Context(), chi.URLParam(r, "id"), req.ActualCost))
}

// Notify handles POST /api/bookings/{id}/notifications
func (h *BookingHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respond(w, r)(h.svc.Notify(r.Context(), chi.URLParam(r, "id"), req.Type))
}

// Slots handles GET /api/schedule/slots?date=
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r, "date", h.now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slots, err := h.svc.Slots(r.Context(), day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if customerClaims(r) != nil {
		for i := range slots {
			slots[i].BookingIDs = nil
		}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *BookingHandler) respond(w http.ResponseWriter, r *http.Request) func(*models.Booking, error) {
	return func(b *models.Booking, err error) {
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// customerClaims returns the caller's claims when they are a customer.
func customerClaims(r *http.Request) *models.Claims {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok || claims.Role != models.RoleCustomer {
		return nil
	}
	return claims
}

func ownBookings(bookings []models.Booking, customerID string) []models.Booking {
	var own []models.Booking
	for _, b := range bookings {
		if b.CustomerID == customerID {
			own = append(own, b)
		}
	}
	return own
}
