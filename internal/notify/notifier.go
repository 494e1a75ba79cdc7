// Package notify delivers customer notifications about bookings.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/garage-hub/internal/models"
)

// Notifier delivers a notification. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}

// LogNotifier writes notifications to the structured log instead of
// delivering them.
type LogNotifier struct {
	Logger log.FieldLogger
}

// NewLogNotifier returns a notifier logging through the standard logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{Logger: log.StandardLogger()}
}

func (l *LogNotifier) Send(_ context.Context, n models.Notification) error {
	l.Logger.WithFields(log.Fields{
		"booking_id": n.BookingID,
		"type":       n.Type,
		"customer":   n.CustomerName,
		"email":      n.CustomerEmail,
		"scheduled":  n.ScheduledDate + " " + n.ScheduledTime,
	}).Info("Customer notification")
	return nil
}

func encode(n models.Notification) ([]byte, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return body, nil
}
