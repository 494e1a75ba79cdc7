package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/auth"
	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/middleware"
	"github.com/ukydev/garage-hub/internal/models"
)

// RouterConfig carries everything the API routes depend on.
type RouterConfig struct {
	Auth       *auth.Service
	Users      db.UserCollection
	Bookings   BookingService
	Invoices   InvoiceService
	Mechanics  MechanicService
	Quotations QuotationService
	Vehicles   VehicleService
	Analytics  AnalyticsService
	Logger     log.FieldLogger
	// RateLimit is the number of requests allowed per client per minute.
	// Zero disables limiting.
	RateLimit int
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}
	authMW := middleware.NewAuthMiddleware(cfg.Auth)
	limiter := middleware.NewRateLimitMiddleware()

	authHandler := NewAuthHandler(cfg.Auth, cfg.Users)
	bookings := NewBookingHandler(cfg.Bookings)
	invoices := NewInvoiceHandler(cfg.Invoices)
	mechanics := NewMechanicHandler(cfg.Mechanics)
	quotations := NewQuotationHandler(cfg.Quotations)
	vehicles := NewVehicleHandler(cfg.Vehicles)
	analytics := NewAnalyticsHandler(cfg.Analytics)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(limiter.RateLimit(cfg.RateLimit, time.Minute))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMW.Authenticate)
		perm := authMW.RequirePermission

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Get("/profile", authHandler.GetProfile)
			r.Put("/profile", authHandler.UpdateProfile)
			r.Post("/password", authHandler.ChangePassword)
		})

		r.With(perm(models.PermManageUsers)).Get("/users", authHandler.ListUsers)

		r.Route("/bookings", func(r chi.Router) {
			r.With(perm(models.PermViewBookings)).Get("/", bookings.List)
			r.With(perm(models.PermCreateBooking)).Post("/", bookings.Create)
			r.With(perm(models.PermViewBookings)).Get("/upcoming", bookings.Upcoming)
			r.Route("/{id}", func(r chi.Router) {
				r.With(perm(models.PermViewBookings)).Get("/", bookings.Get)
				r.Group(func(r chi.Router) {
					r.Use(perm(models.PermUpdateBooking))
					r.Patch("/status", bookings.UpdateStatus)
					r.Post("/arrival", bookings.MarkArrival)
					r.Post("/reschedule", bookings.Reschedule)
					r.Post("/complete", bookings.Complete)
				})
				r.With(perm(models.PermAssignMechanic)).Post("/assign", bookings.AssignMechanic)
				r.With(perm(models.PermNotifyCustomer)).Post("/notifications", bookings.Notify)
			})
		})

		r.With(perm(models.PermViewSchedule)).Get("/schedule/slots", bookings.Slots)

		r.Route("/mechanics", func(r chi.Router) {
			r.With(perm(models.PermViewMechanics)).Get("/", mechanics.List)
			r.With(perm(models.PermManageStaff)).Post("/", mechanics.Create)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.With(perm(models.PermViewInvoices)).Get("/", invoices.List)
			r.With(perm(models.PermViewInvoices)).Get("/{id}", invoices.Get)
			r.Group(func(r chi.Router) {
				r.Use(perm(models.PermManageInvoices))
				r.Post("/preview", invoices.Preview)
				r.Post("/", invoices.Create)
				r.Post("/{id}/send", invoices.Send)
				r.Post("/{id}/pay", invoices.MarkPaid)
			})
		})

		r.Route("/quotations", func(r chi.Router) {
			r.With(perm(models.PermViewQuotes)).Get("/", quotations.List)
			r.With(perm(models.PermRequestQuote)).Post("/", quotations.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(perm(models.PermViewQuotes))
				r.Get("/", quotations.Get)
				r.Post("/messages", quotations.Reply)
				r.Post("/approve", quotations.Approve)
				r.Post("/reject", quotations.Reject)
				r.With(perm(models.PermManageQuotes)).Post("/quote", quotations.Quote)
			})
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Use(perm(models.PermViewVehicles))
			r.Get("/", vehicles.List)
			r.Get("/due", vehicles.Due)
			r.Get("/{id}", vehicles.Get)
			r.Group(func(r chi.Router) {
				r.Use(perm(models.PermManageVehicles))
				r.Post("/", vehicles.Create)
				r.Put("/{id}", vehicles.Update)
				r.Delete("/{id}", vehicles.Delete)
			})
		})

		r.With(perm(models.PermViewAnalytics)).Get("/analytics", analytics.Report)
	})

	return r
}
