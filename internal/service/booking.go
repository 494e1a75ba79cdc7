package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
	"github.com/ukydev/garage-hub/internal/notify"
	"github.com/ukydev/garage-hub/internal/query"
	"github.com/ukydev/garage-hub/internal/schedule"
)

// BookingInput is the payload for creating a booking.
type BookingInput struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	VehicleID    string `json:"vehicle_id"`
	VehicleRego  string `json:"vehicle_rego"`
	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehicleYear  int    `json:"vehicle_year"`

	ServiceType   models.ServiceType   `json:"service_type"`
	ServiceName   string               `json:"service_name"`
	ScheduledDate string               `json:"scheduled_date"`
	ScheduledTime string               `json:"scheduled_time"`
	Duration      int                  `json:"duration"`
	Priority      models.Priority      `json:"priority"`
	Source        models.BookingSource `json:"source"`
	EstimatedCost money.Amount         `json:"estimated_cost"`
	MechanicID    string               `json:"assigned_mechanic_id"`
	Location      string               `json:"location"`
	Notes         string               `json:"notes"`
	CustomerNotes string               `json:"customer_notes"`
}

// Bookings manages the booking lifecycle.
type Bookings struct {
	bookings  db.BookingCollection
	mechanics db.MechanicCollection
	notifier  notify.Notifier
	now       func() time.Time
}

// NewBookings creates a booking service.
func NewBookings(bookings db.BookingCollection, mechanics db.MechanicCollection, notifier notify.Notifier) *Bookings {
	return &Bookings{
		bookings:  bookings,
		mechanics: mechanics,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Create validates in and stores a new pending booking.
func (s *Bookings) Create(ctx context.Context, in BookingInput) (*models.Booking, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, invalid("customer_name is required")
	}
	if strings.TrimSpace(in.VehicleRego) == "" {
		return nil, invalid("vehicle_rego is required")
	}
	if _, err := ParseDate(in.ScheduledDate); err != nil {
		return nil, err
	}
	if err := checkTime("scheduled_time", in.ScheduledTime); err != nil {
		return nil, err
	}
	if in.Duration <= 0 {
		return nil, invalid("duration must be a positive number of minutes")
	}
	if in.ServiceType == "" {
		in.ServiceType = models.ServiceGeneral
	}
	if !in.ServiceType.IsValid() {
		return nil, invalid("unknown service_type %q", in.ServiceType)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.IsValid() {
		return nil, invalid("unknown priority %q", in.Priority)
	}
	if in.Source == "" {
		in.Source = models.SourceManager
	}
	if !in.Source.IsValid() {
		return nil, invalid("unknown source %q", in.Source)
	}
	if err := checkAmount("estimated_cost", in.EstimatedCost); err != nil {
		return nil, err
	}

	now := s.now()
	b := models.Booking{
		ID:            uuid.NewString(),
		CustomerID:    in.CustomerID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		VehicleID:     in.VehicleID,
		VehicleRego:   strings.ToUpper(strings.TrimSpace(in.VehicleRego)),
		VehicleMake:   in.VehicleMake,
		VehicleModel:  in.VehicleModel,
		VehicleYear:   in.VehicleYear,
		ServiceType:   in.ServiceType,
		ServiceName:   in.ServiceName,
		ScheduledDate: in.ScheduledDate,
		ScheduledTime: in.ScheduledTime,
		Duration:      in.Duration,
		Status:        models.StatusPending,
		Priority:      in.Priority,
		Source:        in.Source,
		EstimatedCost: in.EstimatedCost,
		Location:      in.Location,
		ArrivalStatus: models.ArrivalNotArrived,
		Notes:         in.Notes,
		CustomerNotes: in.CustomerNotes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.EndTime = b.Finish()
	if b.ServiceName == "" {
		b.ServiceName = string(b.ServiceType)
	}

	if in.MechanicID != "" {
		m, err := s.mechanic(ctx, in.MechanicID)
		if err != nil {
			return nil, err
		}
		b.AssignedMechanicID, b.AssignedMechanicName = m.ID, m.Name
	}

	if err := s.bookings.InsertBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	log.WithFields(log.Fields{
		"booking_id": b.ID,
		"date":       b.ScheduledDate,
		"time":       b.ScheduledTime,
		"source":     b.Source,
	}).Info("Booking created")
	return &b, nil
}

// Get returns one booking.
func (s *Bookings) Get(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.bookings.FindBookingByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

// List filters every booking with q. A zero Reference means today.
func (s *Bookings) List(ctx context.Context, q query.Query) (query.Result, error) {
	if q.Range != "" && !q.Range.IsValid() {
		return query.Result{}, invalid("unknown range %q", q.Range)
	}
	if q.Status != "" && q.Status != query.All && !q.Status.IsValid() {
		return query.Result{}, invalid("unknown status %q", q.Status)
	}
	if q.Source != "" && q.Source != query.All && !q.Source.IsValid() {
		return query.Result{}, invalid("unknown source %q", q.Source)
	}
	if q.Priority != "" && q.Priority != query.All && !q.Priority.IsValid() {
		return query.Result{}, invalid("unknown priority %q", q.Priority)
	}
	if q.Reference.IsZero() {
		q.Reference = s.now()
	}

	all, err := s.bookings.FindBookings(ctx)
	if err != nil {
		return query.Result{}, fmt.Errorf("load bookings: %w", err)
	}
	return query.Filter(all, q), nil
}

// Upcoming returns the pending and confirmed bookings on day by time.
func (s *Bookings) Upcoming(ctx context.Context, day time.Time) ([]models.Booking, error) {
	onDay, err := s.bookings.FindBookingsByDate(ctx, day.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return query.Upcoming(onDay, day), nil
}

// UpdateStatus sets the status. A reason is kept when cancelling and a
// no-show also marks the arrival.
func (s *Bookings) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, reason string) (*models.Booking, error) {
	if !status.IsValid() {
		return nil, invalid("unknown status %q", status)
	}
	return s.modify(ctx, id, func(b *models.Booking) error {
		b.Status = status
		switch status {
		case models.StatusCancelled:
			if reason != "" {
				b.CancellationReason = reason
			}
		case models.StatusNoShow:
			b.ArrivalStatus = models.ArrivalNoShow
		}
		return nil
	})
}

// MarkArrival records whether the customer turned up. Arrival starts the
// job; otherwise the booking becomes a no-show.
func (s *Bookings) MarkArrival(ctx context.Context, id string, arrived bool) (*models.Booking, error) {
	return s.modify(ctx, id, func(b *models.Booking) error {
		if !arrived {
			b.ArrivalStatus = models.ArrivalNoShow
			b.Status = models.StatusNoShow
			return nil
		}
		at := s.now()
		b.ArrivalStatus = models.ArrivalArrived
		b.ArrivalTime = &at
		b.Status = models.StatusInProgress
		return nil
	})
}

// AssignMechanic puts mechanicID on the booking. Assigning over capacity
// is allowed and logged.
func (s *Bookings) AssignMechanic(ctx context.Context, id, mechanicID string) (*models.Booking, error) {
	m, err := s.mechanic(ctx, mechanicID)
	if err != nil {
		return nil, err
	}
	if m.AtCapacity() {
		log.WithFields(log.Fields{
			"booking_id":  id,
			"mechanic_id": m.ID,
			"workload":    m.CurrentWorkload,
			"capacity":    m.MaxCapacity,
		}).Warn("Assigning booking to mechanic at capacity")
	}
	return s.modify(ctx, id, func(b *models.Booking) error {
		b.AssignedMechanicID = m.ID
		b.AssignedMechanicName = m.Name
		return nil
	})
}

// Reschedule moves the booking and counts the move.
func (s *Bookings) Reschedule(ctx context.Context, id, date, at string) (*models.Booking, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	if err := checkTime("scheduled_time", at); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, func(b *models.Booking) error {
		if b.Status == models.StatusCompleted {
			return fmt.Errorf("%w: completed bookings cannot be rescheduled", ErrConflict)
		}
		b.ScheduledDate = date
		b.ScheduledTime = at
		b.EndTime = ""
		b.EndTime = b.Finish()
		b.RescheduleCount++
		b.ReminderSent = false
		return nil
	})
}

// Complete closes the job with its final cost.
func (s *Bookings) Complete(ctx context.Context, id string, actualCost money.Amount) (*models.Booking, error) {
	if err := checkAmount("actual_cost", actualCost); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, func(b *models.Booking) error {
		b.Status = models.StatusCompleted
		b.ActualCost = &actualCost
		return nil
	})
}

// Notify records that a customer notification went out and then sends it.
// The flag is saved before sending so a failed save never leaves a sent
// message unrecorded. When the send fails the flag is put back.
func (s *Bookings) Notify(ctx context.Context, id string, kind models.NotificationType) (*models.Booking, error) {
	if !kind.IsValid() {
		return nil, invalid("unknown notification type %q", kind)
	}
	var was bool
	b, err := s.modify(ctx, id, func(b *models.Booking) error {
		was = markSent(b, kind, true)
		return nil
	})
	if err != nil {
		return nil, err
	}

	n := models.Notification{
		BookingID:     b.ID,
		Type:          kind,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		ScheduledDate: b.ScheduledDate,
		ScheduledTime: b.ScheduledTime,
		ServiceName:   b.ServiceName,
		SentAt:        s.now(),
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		if _, rbErr := s.modify(ctx, id, func(b *models.Booking) error {
			markSent(b, kind, was)
			return nil
		}); rbErr != nil {
			log.WithError(rbErr).WithFields(log.Fields{
				"booking_id": id,
				"type":       kind,
			}).Error("Notification failed but its sent flag could not be cleared")
		}
		return nil, fmt.Errorf("send %s notification: %w", kind, err)
	}
	return b, nil
}

// markSent sets the flag kind tracks and returns its previous value.
func markSent(b *models.Booking, kind models.NotificationType, sent bool) bool {
	var was bool
	switch kind {
	case models.NotifyConfirmation:
		was, b.ConfirmationSent = b.ConfirmationSent, sent
	case models.NotifyReminder:
		was, b.ReminderSent = b.ReminderSent, sent
	}
	return was
}

// Slots returns the half-hour availability grid for date.
func (s *Bookings) Slots(ctx context.Context, date time.Time) ([]schedule.TimeSlot, error) {
	onDay, err := s.bookings.FindBookingsByDate(ctx, date.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	mechanics, err := s.mechanics.FindMechanics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mechanics: %w", err)
	}
	return schedule.Slots(date, onDay, mechanics), nil
}

func (s *Bookings) mechanic(ctx context.Context, id string) (*models.Mechanic, error) {
	m, err := s.mechanics.FindMechanicByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, invalid("unknown mechanic %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load mechanic %s: %w", id, err)
	}
	return m, nil
}

// modify loads a booking, applies fn and saves it.
func (s *Bookings) modify(ctx context.Context, id string, fn func(*models.Booking) error) (*models.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	b.UpdatedAt = s.now()
	if err := s.bookings.UpdateBooking(ctx, id, *b); err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}
