// Command garage-hub serves the workshop booking and invoicing API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/auth"
	"github.com/ukydev/garage-hub/internal/config"
	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/handlers"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/notify"
	"github.com/ukydev/garage-hub/internal/service"
)

const adminUsername = "admin"

// stores groups the collections the services run on.
type stores struct {
	bookings   db.BookingCollection
	mechanics  db.MechanicCollection
	invoices   db.InvoiceCollection
	quotations db.QuotationCollection
	vehicles   db.VehicleCollection
	users      db.UserCollection
	close      func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store != config.StoreMongo {
		mem := db.NewMemoryStore()
		return &stores{
			bookings:   mem,
			mechanics:  mem,
			invoices:   mem,
			quotations: mem,
			vehicles:   mem,
			users:      mem,
			close:      func(context.Context) error { return nil },
		}, nil
	}

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	return &stores{
		bookings:   &db.MongoBookingCollection{Collection: database.Collection(db.BookingsCollection)},
		mechanics:  &db.MongoMechanicCollection{Collection: database.Collection(db.MechanicsCollection)},
		invoices:   &db.MongoInvoiceCollection{Collection: database.Collection(db.InvoicesCollection)},
		quotations: &db.MongoQuotationCollection{Collection: database.Collection(db.QuotationsCollection)},
		vehicles:   &db.MongoVehicleCollection{Collection: database.Collection(db.VehiclesCollection)},
		users:      &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)},
		close:      client.Disconnect,
	}, nil
}

func openNotifier(cfg *config.Config) (notify.Notifier, func() error, error) {
	switch cfg.Notifier {
	case config.NotifierAMQP:
		n, err := notify.NewAMQPNotifier(cfg.AMQPURL)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	case config.NotifierMQTT:
		n, err := notify.NewMQTTNotifier(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil
	default:
		return notify.NewLogNotifier(), func() error { return nil }, nil
	}
}

// seedDemo loads the demo workshop unless bookings already exist.
func seedDemo(ctx context.Context, st *stores, today time.Time) error {
	existing, err := st.bookings.FindBookings(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.WithField("bookings", len(existing)).Info("Store already has data, skipping demo seed")
		return nil
	}
	if err := db.SeedDemo(ctx, db.Seed{
		Bookings:   st.bookings,
		Mechanics:  st.mechanics,
		Invoices:   st.invoices,
		Quotations: st.quotations,
		Vehicles:   st.vehicles,
	}, today); err != nil {
		return err
	}
	log.Info("Seeded demo workshop")
	return nil
}

// ensureAdmin creates the admin account when a password is configured
// and no admin user exists yet.
func ensureAdmin(ctx context.Context, users db.UserCollection, authService *auth.Service, password string) error {
	if password == "" {
		return nil
	}
	if _, err := users.FindUserByUsername(ctx, adminUsername); err == nil {
		return nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return err
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		ID:           "user-admin",
		Username:     adminUsername,
		Email:        "admin@garage.local",
		PasswordHash: hash,
		FirstName:    "Workshop",
		LastName:     "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.InsertUser(ctx, admin); err != nil {
		return err
	}
	log.WithField("username", adminUsername).Info("Created admin user")
	return nil
}

func newRouter(cfg *config.Config, st *stores, authService *auth.Service, notifier notify.Notifier) http.Handler {
	return handlers.NewRouter(handlers.RouterConfig{
		Auth:       authService,
		Users:      st.users,
		Bookings:   service.NewBookings(st.bookings, st.mechanics, notifier),
		Invoices:   service.NewInvoices(st.invoices, st.bookings),
		Mechanics:  service.NewMechanics(st.mechanics),
		Quotations: service.NewQuotations(st.quotations),
		Vehicles:   service.NewVehicles(st.vehicles),
		Analytics:  service.NewAnalytics(st.bookings),
		Logger:     log.StandardLogger(),
		RateLimit:  cfg.RateLimit,
	})
}

func main() {
	cfg := config.Load()
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(cfg.LogLevel)

	ctx := context.Background()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}()

	notifier, closeNotifier, err := openNotifier(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to start notifier")
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			log.WithError(err).Warn("Failed to close notifier")
		}
	}()

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	if cfg.SeedDemo {
		if err := seedDemo(ctx, st, time.Now()); err != nil {
			log.WithError(err).Fatal("Failed to seed demo data")
		}
	}
	if err := ensureAdmin(ctx, st.users, authService, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("Failed to create admin user")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(cfg, st, authService, notifier),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"addr":     srv.Addr,
			"store":    cfg.Store,
			"notifier": cfg.Notifier,
		}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
		return
	}
	log.Info("Server stopped")
}
