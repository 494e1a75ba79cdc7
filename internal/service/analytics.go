package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/query"
)

// Analytics reports on workshop activity.
type Analytics struct {
	bookings db.BookingCollection
	now      func() time.Time
}

func NewAnalytics(bookings db.BookingCollection) *Analytics {
	return &Analytics{bookings: bookings, now: time.Now}
}

// Report analyses the period containing ref. An empty period means the
// month; a zero ref means today.
func (s *Analytics) Report(ctx context.Context, period query.Period, ref time.Time) (query.Report, error) {
	if period == "" {
		period = query.PeriodMonth
	}
	if !period.IsValid() {
		return query.Report{}, invalid("range %q must be week, month, quarter or year", period)
	}
	if ref.IsZero() {
		ref = s.now()
	}
	all, err := s.bookings.FindBookings(ctx)
	if err != nil {
		return query.Report{}, fmt.Errorf("load bookings: %w", err)
	}
	return query.Analyse(all, period, ref), nil
}
