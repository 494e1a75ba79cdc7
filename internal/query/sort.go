package query

import (
	"sort"
	"time"

	"github.com/ukydev/garage-hub/internal/models"
)

// SortBySchedule returns a copy ordered by scheduled date then time.
// Equal keys keep their input order.
func SortBySchedule(bookings []models.Booking) []models.Booking {
	out := append([]models.Booking(nil), bookings...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ScheduledDate != out[j].ScheduledDate {
			return out[i].ScheduledDate < out[j].ScheduledDate
		}
		return out[i].ScheduledTime < out[j].ScheduledTime
	})
	return out
}

// Upcoming returns the pending or confirmed bookings on day, by time.
func Upcoming(bookings []models.Booking, day time.Time) []models.Booking {
	date := Day(day).Format(models.DateLayout)
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.ScheduledDate != date {
			continue
		}
		if b.Status == models.StatusPending || b.Status == models.StatusConfirmed {
			out = append(out, b)
		}
	}
	return SortBySchedule(out)
}
