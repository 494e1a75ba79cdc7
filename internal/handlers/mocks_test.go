package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/ukydev/garage-hub/internal/middleware"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
	"github.com/ukydev/garage-hub/internal/query"
	"github.com/ukydev/garage-hub/internal/schedule"
	"github.com/ukydev/garage-hub/internal/service"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	return m.Called(ctx, id, user).Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) booking(args mock.Arguments) (*models.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingService) Create(ctx context.Context, in service.BookingInput) (*models.Booking, error) {
	return m.booking(m.Called(in))
}

func (m *mockBookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return m.booking(m.Called(id))
}

func (m *mockBookingService) List(ctx context.Context, q query.Query) (query.Result, error) {
	args := m.Called(q)
	return args.Get(0).(query.Result), args.Error(1)
}

func (m *mockBookingService) Upcoming(ctx context.Context, day time.Time) ([]models.Booking, error) {
	args := m.Called(day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, reason string) (*models.Booking, error) {
	return m.booking(m.Called(id, status, reason))
}

func (m *mockBookingService) MarkArrival(ctx context.Context, id string, arrived bool) (*models.Booking, error) {
	return m.booking(m.Called(id, arrived))
}

func (m *mockBookingService) AssignMechanic(ctx context.Context, id, mechanicID string) (*models.Booking, error) {
	return m.booking(m.Called(id, mechanicID))
}

func (m *mockBookingService) Reschedule(ctx context.Context, id, date, at string) (*models.Booking, error) {
	return m.booking(m.Called(id, date, at))
}

func (m *mockBookingService) Complete(ctx context.Context, id string, actualCost money.Amount) (*models.Booking, error) {
	return m.booking(m.Called(id, actualCost.String()))
}

func (m *mockBookingService) Notify(ctx context.Context, id string, kind models.NotificationType) (*models.Booking, error) {
	return m.booking(m.Called(id, kind))
}

func (m *mockBookingService) Slots(ctx context.Context, date time.Time) ([]schedule.TimeSlot, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.TimeSlot), args.Error(1)
}

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) invoice(args mock.Arguments) (*models.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceService) Preview(in service.InvoiceInput) models.InvoiceTotals {
	return m.Called(in).Get(0).(models.InvoiceTotals)
}

func (m *mockInvoiceService) Create(ctx context.Context, in service.InvoiceInput) (*models.Invoice, error) {
	return m.invoice(m.Called(in))
}

func (m *mockInvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	return m.invoice(m.Called(id))
}

func (m *mockInvoiceService) List(ctx context.Context, status, search string) ([]models.Invoice, error) {
	args := m.Called(status, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *mockInvoiceService) Send(ctx context.Context, id string) (*models.Invoice, error) {
	return m.invoice(m.Called(id))
}

func (m *mockInvoiceService) MarkPaid(ctx context.Context, id string) (*models.Invoice, error) {
	return m.invoice(m.Called(id))
}

type mockMechanicService struct {
	mock.Mock
}

func (m *mockMechanicService) List(ctx context.Context) ([]models.Mechanic, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Mechanic), args.Error(1)
}

func (m *mockMechanicService) Create(ctx context.Context, in service.MechanicInput) (*models.Mechanic, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mechanic), args.Error(1)
}

type mockQuotationService struct {
	mock.Mock
}

func (m *mockQuotationService) quotation(args mock.Arguments) (*models.Quotation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quotation), args.Error(1)
}

func (m *mockQuotationService) Create(ctx context.Context, in service.QuotationInput) (*models.Quotation, error) {
	return m.quotation(m.Called(in))
}

func (m *mockQuotationService) List(ctx context.Context) ([]models.Quotation, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quotation), args.Error(1)
}

func (m *mockQuotationService) Get(ctx context.Context, id string) (*models.Quotation, error) {
	return m.quotation(m.Called(id))
}

func (m *mockQuotationService) Reply(ctx context.Context, id string, sender models.Sender, message string) (*models.Quotation, error) {
	return m.quotation(m.Called(id, sender, message))
}

func (m *mockQuotationService) Quote(ctx context.Context, id string, in service.QuoteInput) (*models.Quotation, error) {
	return m.quotation(m.Called(id, in))
}

func (m *mockQuotationService) Approve(ctx context.Context, id string) (*models.Quotation, error) {
	return m.quotation(m.Called(id))
}

func (m *mockQuotationService) Reject(ctx context.Context, id string) (*models.Quotation, error) {
	return m.quotation(m.Called(id))
}

type mockVehicleService struct {
	mock.Mock
}

func (m *mockVehicleService) vehicles(args mock.Arguments) ([]models.Vehicle, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *mockVehicleService) vehicle(args mock.Arguments) (*models.Vehicle, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *mockVehicleService) List(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	return m.vehicles(m.Called(ownerID))
}

func (m *mockVehicleService) Due(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	return m.vehicles(m.Called(ownerID))
}

func (m *mockVehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	return m.vehicle(m.Called(id))
}

func (m *mockVehicleService) Create(ctx context.Context, in service.VehicleInput) (*models.Vehicle, error) {
	return m.vehicle(m.Called(in))
}

func (m *mockVehicleService) Update(ctx context.Context, id string, in service.VehicleInput) (*models.Vehicle, error) {
	return m.vehicle(m.Called(id, in))
}

func (m *mockVehicleService) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

type mockAnalyticsService struct {
	mock.Mock
}

func (m *mockAnalyticsService) Report(ctx context.Context, period query.Period, ref time.Time) (query.Report, error) {
	args := m.Called(period, ref)
	return args.Get(0).(query.Report), args.Error(1)
}

// withUser attaches claims to r the way the auth middleware does.
func withUser(r *http.Request, claims *models.Claims) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), claims))
}

// withURLParam sets a chi route parameter on r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
