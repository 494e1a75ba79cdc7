package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/invoice"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

// DefaultPaymentTerms is how long a customer has to pay when no due date
// is given.
const DefaultPaymentTerms = 14 * 24 * time.Hour

// InvoiceInput is the payload for previewing or creating an invoice.
type InvoiceInput struct {
	BookingID        string            `json:"booking_id"`
	CustomerName     string            `json:"customer_name"`
	CustomerEmail    string            `json:"customer_email"`
	VehicleRego      string            `json:"vehicle_rego"`
	Services         []models.LineItem `json:"services"`
	Parts            []models.LineItem `json:"parts"`
	LabourCharge     money.Amount      `json:"labour_charge"`
	DiagnosticCharge money.Amount      `json:"diagnostic_charge"`
	OtherCharges     []models.Charge   `json:"other_charges"`
	DueDate          string            `json:"due_date"`
	Notes            string            `json:"notes"`
}

// Invoices bills bookings.
type Invoices struct {
	invoices db.InvoiceCollection
	bookings db.BookingCollection
	now      func() time.Time

	// numbering serialises number assignment within this process.
	numbering sync.Mutex
}

// NewInvoices creates an invoice service.
func NewInvoices(invoices db.InvoiceCollection, bookings db.BookingCollection) *Invoices {
	return &Invoices{invoices: invoices, bookings: bookings, now: time.Now}
}

// Preview computes the totals for in without storing anything.
func (s *Invoices) Preview(in InvoiceInput) models.InvoiceTotals {
	return invoice.ComputeTotals(in.Services, in.Parts, in.LabourCharge, in.DiagnosticCharge, in.OtherCharges)
}

// Create validates in, fills customer details from the booking and stores
// a draft invoice with the next number for the current year.
func (s *Invoices) Create(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	if len(in.Services) == 0 && len(in.Parts) == 0 {
		return nil, invalid("an invoice needs at least one service or part")
	}
	if err := checkItems("services", in.Services); err != nil {
		return nil, err
	}
	if err := checkItems("parts", in.Parts); err != nil {
		return nil, err
	}
	if err := checkAmount("labour_charge", in.LabourCharge); err != nil {
		return nil, err
	}
	if err := checkAmount("diagnostic_charge", in.DiagnosticCharge); err != nil {
		return nil, err
	}
	for i, c := range in.OtherCharges {
		if err := checkAmount(fmt.Sprintf("other_charges[%d] price", i), c.Price); err != nil {
			return nil, err
		}
	}

	now := s.now()
	due := now.Add(DefaultPaymentTerms).Format(models.DateLayout)
	if in.DueDate != "" {
		if _, err := ParseDate(in.DueDate); err != nil {
			return nil, err
		}
		due = in.DueDate
	}

	inv := models.Invoice{
		ID:               uuid.NewString(),
		BookingID:        in.BookingID,
		CustomerName:     strings.TrimSpace(in.CustomerName),
		CustomerEmail:    in.CustomerEmail,
		VehicleRego:      in.VehicleRego,
		Services:         in.Services,
		Parts:            in.Parts,
		LabourCharge:     in.LabourCharge,
		DiagnosticCharge: in.DiagnosticCharge,
		OtherCharges:     in.OtherCharges,
		Totals:           s.Preview(in),
		Status:           models.InvoiceDraft,
		DueDate:          due,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if in.BookingID != "" {
		b, err := s.bookings.FindBookingByID(ctx, in.BookingID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, invalid("unknown booking %q", in.BookingID)
		}
		if err != nil {
			return nil, fmt.Errorf("load booking %s: %w", in.BookingID, err)
		}
		if inv.CustomerName == "" {
			inv.CustomerName = b.CustomerName
		}
		if inv.CustomerEmail == "" {
			inv.CustomerEmail = b.CustomerEmail
		}
		if inv.VehicleRego == "" {
			inv.VehicleRego = b.VehicleRego
		}
	}
	if inv.CustomerName == "" {
		return nil, invalid("customer_name is required")
	}

	s.numbering.Lock()
	defer s.numbering.Unlock()
	seq, err := s.invoices.CountInvoicesWithPrefix(ctx, invoice.NumberPrefix(now.Year()))
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}
	inv.Number = invoice.Number(now.Year(), seq+1)

	if err := s.invoices.InsertInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}
	log.WithFields(log.Fields{
		"invoice_id": inv.ID,
		"number":     inv.Number,
		"booking_id": inv.BookingID,
		"total":      inv.Totals.Total.String(),
	}).Info("Invoice created")
	return &inv, nil
}

// Get returns one invoice.
func (s *Invoices) Get(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := s.invoices.FindInvoiceByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice", id)
	}
	return inv, nil
}

// List marks late invoices overdue, then filters by status tab and search.
func (s *Invoices) List(ctx context.Context, status, search string) ([]models.Invoice, error) {
	if status != "" && status != "all" && !models.InvoiceStatus(status).IsValid() {
		return nil, invalid("unknown invoice status %q", status)
	}
	all, err := s.invoices.FindInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	changed := invoice.MarkOverdue(all, s.now())
	if len(changed) > 0 {
		byID := make(map[string]models.Invoice, len(all))
		for _, inv := range all {
			byID[inv.ID] = inv
		}
		for _, id := range changed {
			inv := byID[id]
			inv.UpdatedAt = s.now()
			if err := s.invoices.UpdateInvoice(ctx, id, inv); err != nil {
				return nil, fmt.Errorf("mark invoice %s overdue: %w", id, err)
			}
		}
		log.WithField("count", len(changed)).Info("Invoices marked overdue")
	}
	return invoice.FilterInvoices(all, status, search), nil
}

// Send moves a draft or overdue invoice to sent.
func (s *Invoices) Send(ctx context.Context, id string) (*models.Invoice, error) {
	return s.modify(ctx, id, func(inv *models.Invoice) error {
		if inv.Status == models.InvoicePaid {
			return fmt.Errorf("%w: invoice %s is already paid", ErrConflict, inv.Number)
		}
		inv.Status = models.InvoiceSent
		return nil
	})
}

// MarkPaid records payment.
func (s *Invoices) MarkPaid(ctx context.Context, id string) (*models.Invoice, error) {
	return s.modify(ctx, id, func(inv *models.Invoice) error {
		if inv.Status == models.InvoicePaid {
			return fmt.Errorf("%w: invoice %s is already paid", ErrConflict, inv.Number)
		}
		if inv.Status == models.InvoiceDraft {
			return fmt.Errorf("%w: invoice %s has not been sent", ErrConflict, inv.Number)
		}
		at := s.now()
		inv.Status = models.InvoicePaid
		inv.PaidAt = &at
		return nil
	})
}

func (s *Invoices) modify(ctx context.Context, id string, fn func(*models.Invoice) error) (*models.Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(inv); err != nil {
		return nil, err
	}
	inv.UpdatedAt = s.now()
	if err := s.invoices.UpdateInvoice(ctx, id, *inv); err != nil {
		return nil, notFound(err, "invoice", id)
	}
	return inv, nil
}
