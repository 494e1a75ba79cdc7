package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ukydev/garage-hub/internal/query"
)

// AnalyticsService reports on the workshop's bookings.
type AnalyticsService interface {
	Report(ctx context.Context, period query.Period, ref time.Time) (query.Report, error)
}

// AnalyticsHandler serves the analytics dashboard.
type AnalyticsHandler struct {
	svc AnalyticsService
	now func() time.Time
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, now: time.Now}
}

// Report handles GET /api/analytics?range=week|month|quarter|year&date=
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	ref, err := dateParam(r, "date", h.now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	report, err := h.svc.Report(r.Context(), query.Period(r.URL.Query().Get("range")), ref)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
