package query

import (
	"time"

	"github.com/ukydev/garage-hub/internal/models"
)

// window is an inclusive range of calendar days in UTC.
type window struct {
	open     bool
	from, to time.Time
}

// Day truncates t to its calendar date, keeping t's own wall-clock date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	day := Day(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func newWindow(ref time.Time, mode RangeMode) window {
	day := Day(ref)
	switch mode {
	case RangeDaily:
		return window{from: day, to: day}
	case RangeWeekly:
		start := WeekStart(ref)
		return window{from: start, to: start.AddDate(0, 0, 6)}
	case RangeMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return window{from: start, to: start.AddDate(0, 1, -1)}
	default:
		return window{open: true}
	}
}

func (w window) contains(b *models.Booking) bool {
	if w.open {
		return true
	}
	d, ok := b.Date()
	if !ok {
		return false
	}
	return !d.Before(w.from) && !d.After(w.to)
}
