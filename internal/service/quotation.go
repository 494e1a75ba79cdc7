package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

// QuotationInput is the payload for requesting a quote.
type QuotationInput struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	VehicleRego  string `json:"vehicle_rego"`
	CarMake      string `json:"car_make"`
	Service      string `json:"service"`
	Description  string `json:"description"`
}

// QuoteInput is the workshop's price for a quotation.
type QuoteInput struct {
	Amount        money.Amount `json:"amount"`
	EstimatedDate string       `json:"estimated_date"`
	Message       string       `json:"message"`
}

// numberAttempts bounds retries when another writer took the next number.
const numberAttempts = 5

// Quotations runs the quote conversation between customers and the workshop.
type Quotations struct {
	quotes db.QuotationCollection
	now    func() time.Time
	mu     sync.Mutex // serialises numbering
}

func NewQuotations(quotes db.QuotationCollection) *Quotations {
	return &Quotations{quotes: quotes, now: time.Now}
}

// Create opens a pending quotation numbered after the ones already stored.
func (s *Quotations) Create(ctx context.Context, in QuotationInput) (*models.Quotation, error) {
	if strings.TrimSpace(in.VehicleRego) == "" {
		return nil, invalid("vehicle_rego is required")
	}
	if strings.TrimSpace(in.Service) == "" {
		return nil, invalid("service is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description is required")
	}

	now := s.now()
	q := models.Quotation{
		CustomerID:   in.CustomerID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		VehicleRego:  normaliseRego(in.VehicleRego),
		CarMake:      strings.TrimSpace(in.CarMake),
		Service:      strings.TrimSpace(in.Service),
		Description:  strings.TrimSpace(in.Description),
		Status:       models.QuotePending,
		Messages:     []models.QuotationMessage{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.quotes.CountQuotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("count quotations: %w", err)
	}
	for attempt := 1; ; attempt++ {
		q.ID = fmt.Sprintf("QT-%03d", n+attempt)
		err = s.quotes.InsertQuotation(ctx, q)
		if err == nil || !errors.Is(err, db.ErrDuplicate) || attempt == numberAttempts {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("insert quotation: %w", err)
	}
	log.WithFields(log.Fields{"quotation_id": q.ID, "customer_id": q.CustomerID}).Info("Quotation requested")
	return &q, nil
}

func (s *Quotations) List(ctx context.Context) ([]models.Quotation, error) {
	all, err := s.quotes.FindQuotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quotations: %w", err)
	}
	return all, nil
}

func (s *Quotations) Get(ctx context.Context, id string) (*models.Quotation, error) {
	q, err := s.quotes.FindQuotationByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "quotation", id)
	}
	return q, nil
}

// Reply adds a message to the thread.
func (s *Quotations) Reply(ctx context.Context, id string, sender models.Sender, message string) (*models.Quotation, error) {
	if !sender.IsValid() {
		return nil, invalid("unknown sender %q", sender)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("message is required")
	}
	return s.modify(ctx, id, func(q *models.Quotation) error {
		q.AddMessage(sender, message, s.now())
		return nil
	})
}

// Quote prices the job and moves it in progress. An open quote can be
// re-priced until the customer decides.
func (s *Quotations) Quote(ctx context.Context, id string, in QuoteInput) (*models.Quotation, error) {
	if !in.Amount.Decimal().IsPositive() {
		return nil, invalid("amount must be positive")
	}
	if in.EstimatedDate != "" {
		if _, err := ParseDate(in.EstimatedDate); err != nil {
			return nil, err
		}
	}
	return s.modify(ctx, id, func(q *models.Quotation) error {
		if q.Status.Decided() {
			return fmt.Errorf("%w: quotation %s is already %s", ErrConflict, q.ID, q.Status)
		}
		amount := in.Amount
		q.Amount = &amount
		q.Status = models.QuoteInProgress
		if in.EstimatedDate != "" {
			q.EstimatedDate = in.EstimatedDate
		}
		msg := strings.TrimSpace(in.Message)
		if msg == "" {
			msg = "Quoted $" + amount.String()
		}
		q.AddMessage(models.SenderBusiness, msg, s.now())
		return nil
	})
}

// Approve records the customer's acceptance of the quoted price.
func (s *Quotations) Approve(ctx context.Context, id string) (*models.Quotation, error) {
	return s.decide(ctx, id, models.QuoteApproved)
}

// Reject records that the customer turned the quote down.
func (s *Quotations) Reject(ctx context.Context, id string) (*models.Quotation, error) {
	return s.decide(ctx, id, models.QuoteRejected)
}

func (s *Quotations) decide(ctx context.Context, id string, status models.QuotationStatus) (*models.Quotation, error) {
	return s.modify(ctx, id, func(q *models.Quotation) error {
		if q.Status.Decided() {
			return fmt.Errorf("%w: quotation %s is already %s", ErrConflict, q.ID, q.Status)
		}
		if q.Amount == nil {
			return fmt.Errorf("%w: quotation %s has not been priced", ErrConflict, q.ID)
		}
		q.Status = status
		q.UpdatedAt = s.now()
		return nil
	})
}

func (s *Quotations) modify(ctx context.Context, id string, fn func(*models.Quotation) error) (*models.Quotation, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(q); err != nil {
		return nil, err
	}
	if err := s.quotes.UpdateQuotation(ctx, id, *q); err != nil {
		return nil, notFound(err, "quotation", id)
	}
	return q, nil
}
