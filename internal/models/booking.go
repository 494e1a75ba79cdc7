package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ukydev/garage-hub/internal/money"
)

// BookingStatus is the lifecycle state of a booking. Any status may be
// assigned from any other.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no-show"
)

// BookingStatuses lists every status in display order.
var BookingStatuses = []BookingStatus{
	StatusPending, StatusConfirmed, StatusInProgress,
	StatusCompleted, StatusCancelled, StatusNoShow,
}

// IsValid reports whether s is a known status.
func (s BookingStatus) IsValid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ServiceType classifies the work booked.
type ServiceType string

const (
	ServiceWOF         ServiceType = "wof"
	ServiceGeneral     ServiceType = "service"
	ServiceRepair      ServiceType = "repair"
	ServiceDiagnostic  ServiceType = "diagnostic"
	ServiceMaintenance ServiceType = "maintenance"
)

func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceWOF, ServiceGeneral, ServiceRepair, ServiceDiagnostic, ServiceMaintenance:
		return true
	default:
		return false
	}
}

// Priority of a booking.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// BookingSource records who created the booking.
type BookingSource string

const (
	SourceCustomer BookingSource = "customer"
	SourceManager  BookingSource = "manager"
	SourcePhone    BookingSource = "phone"
	SourceWalkIn   BookingSource = "walk-in"
)

func (s BookingSource) IsValid() bool {
	switch s {
	case SourceCustomer, SourceManager, SourcePhone, SourceWalkIn:
		return true
	default:
		return false
	}
}

// ArrivalStatus tracks whether the customer turned up.
type ArrivalStatus string

const (
	ArrivalNotArrived ArrivalStatus = "not-arrived"
	ArrivalArrived    ArrivalStatus = "arrived"
	ArrivalNoShow     ArrivalStatus = "no-show"
)

// Date and time layouts used by ScheduledDate, ScheduledTime and EndTime.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Booking is a scheduled service appointment. Customer and vehicle details
// are denormalised onto the booking.
type Booking struct {
	ID            string `json:"id" bson:"_id"`
	CustomerID    string `json:"customer_id" bson:"customer_id"`
	CustomerName  string `json:"customer_name" bson:"customer_name"`
	CustomerPhone string `json:"customer_phone" bson:"customer_phone"`
	CustomerEmail string `json:"customer_email" bson:"customer_email"`

	VehicleID    string `json:"vehicle_id" bson:"vehicle_id"`
	VehicleRego  string `json:"vehicle_rego" bson:"vehicle_rego"`
	VehicleMake  string `json:"vehicle_make" bson:"vehicle_make"`
	VehicleModel string `json:"vehicle_model" bson:"vehicle_model"`
	VehicleYear  int    `json:"vehicle_year" bson:"vehicle_year"`

	ServiceType   ServiceType `json:"service_type" bson:"service_type"`
	ServiceName   string      `json:"service_name" bson:"service_name"`
	ScheduledDate string      `json:"scheduled_date" bson:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string      `json:"scheduled_time" bson:"scheduled_time"` // HH:MM
	EndTime       string      `json:"end_time" bson:"end_time"`
	Duration      int         `json:"duration" bson:"duration"` // minutes

	Status        BookingStatus `json:"status" bson:"status"`
	Priority      Priority      `json:"priority" bson:"priority"`
	Source        BookingSource `json:"source" bson:"source"`
	EstimatedCost money.Amount  `json:"estimated_cost" bson:"estimated_cost"`
	ActualCost    *money.Amount `json:"actual_cost,omitempty" bson:"actual_cost,omitempty"`

	AssignedMechanicID   string `json:"assigned_mechanic_id,omitempty" bson:"assigned_mechanic_id,omitempty"`
	AssignedMechanicName string `json:"assigned_mechanic_name,omitempty" bson:"assigned_mechanic_name,omitempty"`

	Location           string        `json:"location" bson:"location"`
	ConfirmationSent   bool          `json:"confirmation_sent" bson:"confirmation_sent"`
	ReminderSent       bool          `json:"reminder_sent" bson:"reminder_sent"`
	ArrivalStatus      ArrivalStatus `json:"arrival_status,omitempty" bson:"arrival_status,omitempty"`
	ArrivalTime        *time.Time    `json:"arrival_time,omitempty" bson:"arrival_time,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	RescheduleCount    int           `json:"reschedule_count" bson:"reschedule_count"`

	Notes         string `json:"notes" bson:"notes"`
	CustomerNotes string `json:"customer_notes,omitempty" bson:"customer_notes,omitempty"`
	MechanicNotes string `json:"mechanic_notes,omitempty" bson:"mechanic_notes,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Date parses ScheduledDate. ok is false when the date is malformed.
func (b *Booking) Date() (time.Time, bool) {
	d, err := time.Parse(DateLayout, b.ScheduledDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Finish returns EndTime, or ScheduledTime plus Duration when EndTime is
// empty. Work that would run past midnight finishes at "24:00". Empty when
// neither can be computed.
func (b *Booking) Finish() string {
	if b.EndTime != "" {
		return b.EndTime
	}
	start, ok := Minutes(b.ScheduledTime)
	if !ok || b.Duration <= 0 {
		return ""
	}
	return clock(min(start+b.Duration, MinutesPerDay))
}

// Span returns the booking's start and end as minutes since midnight.
// The end never passes midnight: an end at or before the start, or a
// duration running past 24:00, is cut to MinutesPerDay. end equals start
// when the booking has neither an end time nor a duration.
func (b *Booking) Span() (start, end int, ok bool) {
	start, ok = Minutes(b.ScheduledTime)
	if !ok {
		return 0, 0, false
	}
	if e, valid := Minutes(b.EndTime); valid {
		if e <= start {
			return start, MinutesPerDay, true
		}
		return start, e, true
	}
	if b.Duration > 0 {
		return start, min(start+b.Duration, MinutesPerDay), true
	}
	return start, start, true
}

// MinutesPerDay is the latest end a booking can have, written "24:00".
const MinutesPerDay = 24 * 60

// Minutes parses an HH:MM clock time as minutes since midnight. "24:00"
// is accepted as the end of the day.
func Minutes(hhmm string) (int, bool) {
	if len(hhmm) != len(TimeLayout) || hhmm[2] != ':' || !digits(hhmm[:2]) || !digits(hhmm[3:]) {
		return 0, false
	}
	h, _ := strconv.Atoi(hhmm[:2])
	m, _ := strconv.Atoi(hhmm[3:])
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, false
	}
	return h*60 + m, true
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
