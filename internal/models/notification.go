package models

import "time"

// NotificationType is the kind of customer message sent for a booking.
type NotificationType string

const (
	NotifyConfirmation NotificationType = "confirmation"
	NotifyReminder     NotificationType = "reminder"
	NotifyCompletion   NotificationType = "completion"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotifyConfirmation, NotifyReminder, NotifyCompletion:
		return true
	default:
		return false
	}
}

// Notification is the payload handed to a notifier.
type Notification struct {
	BookingID     string           `json:"booking_id"`
	Type          NotificationType `json:"type"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone"`
	ScheduledDate string           `json:"scheduled_date"`
	ScheduledTime string           `json:"scheduled_time"`
	ServiceName   string           `json:"service_name"`
	SentAt        time.Time        `json:"sent_at"`
}
