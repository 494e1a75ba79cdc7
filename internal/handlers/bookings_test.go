package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
	"github.com/ukydev/garage-hub/internal/query"
	"github.com/ukydev/garage-hub/internal/schedule"
	"github.com/ukydev/garage-hub/internal/service"
)

var handlerNow = time.Date(2024, 2, 21, 8, 0, 0, 0, time.UTC)

var (
	manager  = &models.Claims{UserID: "m1", Username: "manager", Role: models.RoleManager}
	customer = &models.Claims{UserID: "c1", Username: "john", Role: models.RoleCustomer}
)

func newBookingHandler() (*BookingHandler, *mockBookingService) {
	svc := new(mockBookingService)
	h := NewBookingHandler(svc)
	h.now = func() time.Time { return handlerNow }
	return h, svc
}

func call(fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestBookingHandler_List(t *testing.T) {
	h, svc := newBookingHandler()

	want := query.Query{
		Search:     "smith",
		Reference:  time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		Range:      query.RangeWeekly,
		Status:     models.StatusConfirmed,
		Source:     query.All,
		MechanicID: "MECH002",
		Priority:   models.PriorityHigh,
	}
	items := []models.Booking{{ID: "1", CustomerName: "John Smith", Status: models.StatusConfirmed}}
	svc.On("List", want).Return(query.Result{Items: items, Stats: query.Summarise(items)}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/bookings?q=smith&date=2024-02-20&range=weekly&status=confirmed&source=all&mechanic=MECH002&priority=high", nil)
	w := call(h.List, withUser(req, manager))

	require.Equal(t, http.StatusOK, w.Code)
	var got query.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Stats.Total)
	assert.Equal(t, 1, got.Stats.Confirmed)
	svc.AssertExpectations(t)
}

func TestBookingHandler_ListEmptyIsArray(t *testing.T) {
	h, svc := newBookingHandler()
	svc.On("List", query.Query{}).Return(query.Result{}, nil)

	w := call(h.List, withUser(httptest.NewRequest(http.MethodGet, "/api/bookings", nil), manager))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}

func TestBookingHandler_ListErrors(t *testing.T) {
	h, svc := newBookingHandler()

	w := call(h.List, httptest.NewRequest(http.MethodGet, "/api/bookings?date=20-02-2024", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "YYYY-MM-DD")

	svc.On("List", query.Query{Range: "fortnightly"}).
		Return(query.Result{}, fmt.Errorf("%w: unknown range", service.ErrInvalidInput)).Once()
	w = call(h.List, httptest.NewRequest(http.MethodGet, "/api/bookings?range=fortnightly", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("List", query.Query{}).Return(query.Result{}, assert.AnError).Once()
	w = call(h.List, httptest.NewRequest(http.MethodGet, "/api/bookings", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", errorMessage(t, w), "storage errors stay private")
}

func TestBookingHandler_ListScopesCustomers(t *testing.T) {
	h, svc := newBookingHandler()
	revenue := money.MustParse("80")
	items := []models.Booking{
		{ID: "1", CustomerID: "c1", Status: models.StatusPending},
		{ID: "2", CustomerID: "c2", Status: models.StatusCompleted, ActualCost: &revenue},
		{ID: "3", CustomerID: "c1", Status: models.StatusConfirmed},
	}
	svc.On("List", query.Query{}).Return(query.Result{Items: items, Stats: query.Summarise(items)}, nil)

	w := call(h.List, withUser(httptest.NewRequest(http.MethodGet, "/api/bookings", nil), customer))

	require.Equal(t, http.StatusOK, w.Code)
	var got query.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "1", got.Items[0].ID)
	assert.Equal(t, "3", got.Items[1].ID)
	assert.Equal(t, 2, got.Stats.Total)
	assert.True(t, got.Stats.Revenue.IsZero(), "other customers' revenue is hidden")
}

func TestBookingHandler_Create(t *testing.T) {
	h, svc := newBookingHandler()
	svc.On("Create", mock.MatchedBy(func(in service.BookingInput) bool {
		return in.CustomerName == "Emma Wilson" && in.Source == models.SourceManager && in.MechanicID == "MECH001"
	})).Return(&models.Booking{ID: "b-1", CustomerName: "Emma Wilson"}, nil)

	body := `{"customer_name":"Emma Wilson","vehicle_rego":"GHI012","service_type":"repair",
		"scheduled_date":"2024-02-22","scheduled_time":"13:30","duration":90,
		"estimated_cost":240,"source":"manager","assigned_mechanic_id":"MECH001"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body)), manager)
	w := call(h.Create, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "b-1", got.ID)
	svc.AssertExpectations(t)
}

func TestBookingHandler_CreateAsCustomer(t *testing.T) {
	h, svc := newBookingHandler()
	svc.On("Create", mock.MatchedBy(func(in service.BookingInput) bool {
		return in.CustomerID == "c1" && in.Source == models.SourceCustomer && in.MechanicID == ""
	})).Return(&models.Booking{ID: "b-2"}, nil)

	body := `{"customer_name":"John","vehicle_rego":"ABC123","scheduled_date":"2024-02-22",
		"scheduled_time":"09:00","duration":30,"source":"manager","assigned_mechanic_id":"MECH001"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body)), customer)
	w := call(h.Create, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_CreateRejectsUnknownFields(t *testing.T) {
	h, svc := newBookingHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{"colour":"red"}`))
	w := call(h.Create, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything)
}

func TestBookingHandler_Get(t *testing.T) {
	h, svc := newBookingHandler()
	svc.On("Get", "1").Return(&models.Booking{ID: "1", CustomerID: "c2"}, nil)
	svc.On("Get", "404").Return(nil, fmt.Errorf("%w: booking 404", service.ErrNotFound))

	w := call(h.Get, withUser(withURLParam(httptest.NewRequest(http.MethodGet, "/api/bookings/1", nil), "id", "1"), manager))
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(h.Get, withUser(withURLParam(httptest.NewRequest(http.MethodGet, "/api/bookings/1", nil), "id", "1"), customer))
	assert.Equal(t, http.StatusNotFound, w.Code, "customers cannot see other customers' bookings")

	w = call(h.Get, withURLParam(httptest.NewRequest(http.MethodGet, "/api/bookings/404", nil), "id", "404"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_Upcoming(t *testing.T) {
	h, svc := newBookingHandler()
	svc.On("Upcoming", handlerNow).Return(nil, nil).Once()
	svc.On("Upcoming", time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC)).
		Return([]models.Booking{{ID: "1"}}, nil).Once()

	w := call(h.Upcoming, httptest.NewRequest(http.MethodGet, "/api/bookings/upcoming", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = call(h.Upcoming, httptest.NewRequest(http.MethodGet, "/api/bookings/upcoming?date=2024-02-22", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	w = call(h.Upcoming, httptest.NewRequest(http.MethodGet, "/api/bookings/upcoming?date=tomorrow", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_Actions(t *testing.T) {
	done := &models.Booking{ID: "1"}

	tests := []struct {
		name   string
		fn     func(h *BookingHandler) http.HandlerFunc
		body   string
		expect func(svc *mockBookingService)
		want   int
	}{
		{
			name: "update status",
			fn:   func(h *BookingHandler) http.HandlerFunc { return h.UpdateStatus },
			body: `{"status":"cancelled","reason":"Sold the car"}`,
			expect: func(svc *mockBookingService) {
				svc.On("UpdateStatus", "1", models.StatusCancelled, "Sold the car").Return(done, nil)
			},
			want: http.StatusOK,
		},
		{
			name: "arrival",
			fn:   func(h *BookingHandler) http.HandlerFunc { return h.MarkArrival },
			body: `{"arrived":true}`,
			expect: func(svc *mockBookingService) {
				svc.On("MarkArrival", "1", true).Return(done, nil)
			},
			want: http.StatusOK,
		},
		{
			name: "assign",
			fn:   func(h *BookingHandler) http.HandlerFunc { return h.AssignMechanic },
			body: `{"mechanic_id":"MECH001"}`,
			expect: func(svc *mockBookingService) {
				svc.On("AssignMechanic", "1", "MECH001").Return(done, nil)
			},
			want: http.StatusOK,
		},
		{
			name:   "assign without mechanic",
			fn:     func(h *BookingHandler) http.HandlerFunc { return h.AssignMechanic },
			body:   `{}`,
			expect: func(*mockBookingService) {},
			want:   http.StatusBadRequest,
		},
		{
			name: "reschedule completed",
			fn:   func(h *BookingHandler) http.HandlerFunc { return h.Reschedule },
			body: `{"scheduled_date":"2024-02-23","scheduled_time":"10:00"}`,
			expect: func(svc *mockBookingService) {
				svc.On("Reschedule", "1", "2024-02-23", "10:00").
					Return(nil, fmt.Errorf("%w: completed", service.ErrConflict))
			},
			want: http.StatusConflict,
		},
		{
			name: "complete",
			fn:   func(h *BookingHandler) http.HandlerFunc { return h.Complete },
			body: `{"actual_cost":72.5}`,
			expect: func(svc *mockBookingService) {
				svc.On("Complete", "1", "72.50").Return(done, nil)
			},
			want: http.StatusOK,
		},
		{
			name: "notify",
			fn:   func(h *BookingHandler) http.HandlerFunc { return h.Notify },
			body: `{"type":"reminder"}`,
			expect: func(svc *mockBookingService) {
				svc.On("Notify", "1", models.NotifyReminder).Return(done, nil)
			},
			want: http.StatusOK,
		},
		{
			name:   "malformed body",
			fn:     func(h *BookingHandler) http.HandlerFunc { return h.UpdateStatus },
			body:   `{"status":`,
			expect: func(*mockBookingService) {},
			want:   http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newBookingHandler()
			tt.expect(svc)

			req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/bookings/1/x", strings.NewReader(tt.body)), "id", "1")
			w := call(tt.fn(h), req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_Slots(t *testing.T) {
	h, svc := newBookingHandler()
	slots := []schedule.TimeSlot{
		{Time: "09:00", Available: false, Booked: true, BookingIDs: []string{"1"}},
		{Time: "09:30", Available: true},
	}
	svc.On("Slots", handlerNow).Return(slots, nil)

	w := call(h.Slots, withUser(httptest.NewRequest(http.MethodGet, "/api/schedule/slots", nil), manager))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"booking_ids":["1"]`)

	w = call(h.Slots, withUser(httptest.NewRequest(http.MethodGet, "/api/schedule/slots", nil), customer))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "booking_ids", "customers only see availability")
}
