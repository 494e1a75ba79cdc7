package db

import (
	"context"
	"errors"

	"github.com/ukydev/garage-hub/internal/models"
)

var (
	// ErrNotFound is returned when a lookup or update matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert would break a unique key.
	ErrDuplicate = errors.New("duplicate record")
)

// BookingCollection defines the interface for booking data operations.
// Finders return records in insertion order.
type BookingCollection interface {
	InsertBooking(ctx context.Context, booking models.Booking) error
	FindBookings(ctx context.Context) ([]models.Booking, error)
	FindBookingsByDate(ctx context.Context, date string) ([]models.Booking, error)
	FindBookingByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, booking models.Booking) error
}

// MechanicCollection defines the interface for mechanic data operations.
type MechanicCollection interface {
	InsertMechanic(ctx context.Context, mechanic models.Mechanic) error
	FindMechanics(ctx context.Context) ([]models.Mechanic, error)
	FindMechanicByID(ctx context.Context, id string) (*models.Mechanic, error)
}

// InvoiceCollection defines the interface for invoice data operations.
type InvoiceCollection interface {
	InsertInvoice(ctx context.Context, invoice models.Invoice) error
	FindInvoices(ctx context.Context) ([]models.Invoice, error)
	FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, invoice models.Invoice) error
	// CountInvoicesWithPrefix counts invoices whose number starts with prefix.
	CountInvoicesWithPrefix(ctx context.Context, prefix string) (int, error)
}

// UserCollection defines the interface for user database operations.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// QuotationCollection defines the interface for quotation data operations.
type QuotationCollection interface {
	InsertQuotation(ctx context.Context, q models.Quotation) error
	FindQuotations(ctx context.Context) ([]models.Quotation, error)
	FindQuotationByID(ctx context.Context, id string) (*models.Quotation, error)
	UpdateQuotation(ctx context.Context, id string, q models.Quotation) error
	CountQuotations(ctx context.Context) (int, error)
}

// VehicleCollection defines the interface for vehicle data operations.
// A rego is unique per owner.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, v models.Vehicle) error
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehiclesByOwner(ctx context.Context, ownerID string) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, v models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
}
