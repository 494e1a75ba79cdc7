// Package schedule works out which half-hour slots of a day can take work.
package schedule

import (
	"time"

	"github.com/ukydev/garage-hub/internal/models"
)

const (
	DayStart     = "08:00"
	DayEnd       = "18:00"
	SlotInterval = 30 * time.Minute
)

// TimeSlot is one bookable interval of the workshop day.
type TimeSlot struct {
	Time               string   `json:"time"`
	Available          bool     `json:"available"`
	Booked             bool     `json:"booked"`
	BookingIDs         []string `json:"booking_ids,omitempty"`
	AvailableMechanics []string `json:"available_mechanics"`
}

// Slots returns the slots for date. A slot is available when no active
// booking overlaps it and at least one mechanic covers it.
func Slots(date time.Time, bookings []models.Booking, mechanics []models.Mechanic) []TimeSlot {
	day := date.Format(models.DateLayout)

	active := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ScheduledDate != day || b.Status == models.StatusCancelled || b.Status == models.StatusNoShow {
			continue
		}
		active = append(active, b)
	}

	var slots []TimeSlot
	for _, at := range times() {
		slot := TimeSlot{Time: at, AvailableMechanics: []string{}}
		for i := range active {
			if occupies(&active[i], at) {
				slot.Booked = true
				slot.BookingIDs = append(slot.BookingIDs, active[i].ID)
			}
		}
		for i := range mechanics {
			if mechanics[i].Covers(at) {
				slot.AvailableMechanics = append(slot.AvailableMechanics, mechanics[i].ID)
			}
		}
		slot.Available = !slot.Booked && len(slot.AvailableMechanics) > 0
		slots = append(slots, slot)
	}
	return slots
}

// occupies reports whether b runs over the slot starting at. Times are
// compared as minutes since midnight; a booking without a usable end
// occupies only its start slot.
func occupies(b *models.Booking, at string) bool {
	slot, ok := models.Minutes(at)
	if !ok {
		return false
	}
	start, end, ok := b.Span()
	if !ok {
		return false
	}
	if end <= start {
		return slot == start
	}
	return start <= slot && slot < end
}

func times() []string {
	start, _ := time.Parse(models.TimeLayout, DayStart)
	end, _ := time.Parse(models.TimeLayout, DayEnd)
	var out []string
	for t := start; t.Before(end); t = t.Add(SlotInterval) {
		out = append(out, t.Format(models.TimeLayout))
	}
	return out
}
