// Package query filters and summarises booking lists.
//
// Everything here is a pure function over its inputs. Callers validate
// user input first; records with unparseable dates simply never match a
// dated range.
package query

import (
	"strings"
	"time"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

// RangeMode selects the date window relative to the reference date.
type RangeMode string

const (
	RangeDaily   RangeMode = "daily"
	RangeWeekly  RangeMode = "weekly"
	RangeMonthly RangeMode = "monthly"
	RangeAll     RangeMode = "all"
)

// All disables a string criterion.
const All = "all"

func (m RangeMode) IsValid() bool {
	switch m {
	case RangeDaily, RangeWeekly, RangeMonthly, RangeAll:
		return true
	default:
		return false
	}
}

// Query configures Filter. Empty or "all" criteria do not restrict.
type Query struct {
	Search     string
	Reference  time.Time
	Range      RangeMode
	Status     models.BookingStatus
	Source     models.BookingSource
	MechanicID string
	Priority   models.Priority
}

// Stats summarises a filtered booking list.
type Stats struct {
	Total           int          `json:"total"`
	Pending         int          `json:"pending"`
	Confirmed       int          `json:"confirmed"`
	InProgress      int          `json:"in_progress"`
	Completed       int          `json:"completed"`
	Cancelled       int          `json:"cancelled"`
	NoShow          int          `json:"no_show"`
	CustomerCreated int          `json:"customer_created"`
	Revenue         money.Amount `json:"revenue"`
}

// Result is the output of Filter.
type Result struct {
	Items []models.Booking `json:"items"`
	Stats Stats            `json:"stats"`
}

// Filter returns the bookings matching q, in input order, with stats.
func Filter(bookings []models.Booking, q Query) Result {
	w := newWindow(q.Reference, q.Range)
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	res := Result{Items: make([]models.Booking, 0, len(bookings))}
	for i := range bookings {
		b := &bookings[i]
		if !matchesSearch(b, needle) ||
			!matchesCriterion(string(b.Status), string(q.Status)) ||
			!matchesCriterion(string(b.Source), string(q.Source)) ||
			!matchesCriterion(b.AssignedMechanicID, q.MechanicID) ||
			!matchesCriterion(string(b.Priority), string(q.Priority)) ||
			!w.contains(b) {
			continue
		}
		res.Items = append(res.Items, *b)
	}
	res.Stats = Summarise(res.Items)
	return res
}

// Summarise counts bookings per status and sums recorded revenue.
func Summarise(bookings []models.Booking) Stats {
	var s Stats
	for i := range bookings {
		b := &bookings[i]
		s.Total++
		switch b.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusConfirmed:
			s.Confirmed++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusCancelled:
			s.Cancelled++
		case models.StatusNoShow:
			s.NoShow++
		}
		if b.Source == models.SourceCustomer {
			s.CustomerCreated++
		}
		if b.ActualCost != nil {
			s.Revenue = s.Revenue.Add(*b.ActualCost)
		}
	}
	return s
}

func matchesSearch(b *models.Booking, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.CustomerName), needle) ||
		strings.Contains(strings.ToLower(b.VehicleRego), needle) ||
		strings.Contains(strings.ToLower(b.ServiceName), needle)
}

func matchesCriterion(value, want string) bool {
	return want == "" || want == All || value == want
}
