package query

import (
	"sort"
	"time"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

// Period is the reporting window of an analytics report: the calendar
// week, month, quarter or year containing the reference date.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	default:
		return false
	}
}

// ServiceShare is one row of the breakdown by service type. Percentage
// is the rounded share of the period's bookings.
type ServiceShare struct {
	ServiceType models.ServiceType `json:"service_type"`
	Count       int                `json:"count"`
	Revenue     money.Amount       `json:"revenue"`
	Percentage  int                `json:"percentage"`
}

// MonthTotal is the revenue and booking count of one calendar month.
type MonthTotal struct {
	Month    string       `json:"month"` // YYYY-MM
	Revenue  money.Amount `json:"revenue"`
	Bookings int          `json:"bookings"`
}

// Report is the analytics summary of one period.
type Report struct {
	Period    Period         `json:"period"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Bookings  int            `json:"bookings"`
	Completed int            `json:"completed"`
	Customers int            `json:"customers"`
	Revenue   money.Amount   `json:"revenue"`
	ByService []ServiceShare `json:"by_service"`
	ByMonth   []MonthTotal   `json:"by_month"`
}

// Analyse reports on the bookings scheduled within period around ref.
// Cancelled and no-show bookings are left out. Revenue is the recorded
// actual cost. Services are ordered by count, busiest first; months run
// in calendar order and include months without work.
func Analyse(bookings []models.Booking, period Period, ref time.Time) Report {
	w := periodWindow(ref, period)
	r := Report{
		Period: period,
		From:   w.from.Format(models.DateLayout),
		To:     w.to.Format(models.DateLayout),
	}

	byService := map[models.ServiceType]*ServiceShare{}
	months := map[string]*MonthTotal{}
	firstMonth := time.Date(w.from.Year(), w.from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := firstMonth; !m.After(w.to); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		months[key] = &MonthTotal{Month: key}
		r.ByMonth = append(r.ByMonth, MonthTotal{Month: key})
	}
	customers := map[string]bool{}

	for i := range bookings {
		b := &bookings[i]
		if b.Status == models.StatusCancelled || b.Status == models.StatusNoShow || !w.contains(b) {
			continue
		}
		r.Bookings++
		if b.Status == models.StatusCompleted {
			r.Completed++
		}
		customers[customerKey(b)] = true

		share, ok := byService[b.ServiceType]
		if !ok {
			share = &ServiceShare{ServiceType: b.ServiceType}
			byService[b.ServiceType] = share
		}
		share.Count++

		month := months[b.ScheduledDate[:len("2006-01")]]
		month.Bookings++

		if b.ActualCost != nil {
			r.Revenue = r.Revenue.Add(*b.ActualCost)
			share.Revenue = share.Revenue.Add(*b.ActualCost)
			month.Revenue = month.Revenue.Add(*b.ActualCost)
		}
	}
	r.Customers = len(customers)

	r.ByService = make([]ServiceShare, 0, len(byService))
	for _, share := range byService {
		share.Percentage = percent(share.Count, r.Bookings)
		r.ByService = append(r.ByService, *share)
	}
	sort.Slice(r.ByService, func(i, j int) bool {
		if r.ByService[i].Count != r.ByService[j].Count {
			return r.ByService[i].Count > r.ByService[j].Count
		}
		return r.ByService[i].ServiceType < r.ByService[j].ServiceType
	})
	for i := range r.ByMonth {
		r.ByMonth[i] = *months[r.ByMonth[i].Month]
	}
	return r
}

// periodWindow returns the calendar period containing ref.
func periodWindow(ref time.Time, period Period) window {
	day := Day(ref)
	switch period {
	case PeriodWeek:
		start := WeekStart(ref)
		return window{from: start, to: start.AddDate(0, 0, 6)}
	case PeriodQuarter:
		first := time.Month((int(day.Month())-1)/3*3 + 1)
		start := time.Date(day.Year(), first, 1, 0, 0, 0, 0, time.UTC)
		return window{from: start, to: start.AddDate(0, 3, -1)}
	case PeriodYear:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return window{from: start, to: start.AddDate(1, 0, -1)}
	default:
		return newWindow(ref, RangeMonthly)
	}
}

// customerKey identifies a customer by account, falling back to the name
// for walk-in and phone bookings made without one.
func customerKey(b *models.Booking) string {
	if b.CustomerID != "" {
		return "id:" + b.CustomerID
	}
	return "name:" + b.CustomerName
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return (part*100 + whole/2) / whole
}
