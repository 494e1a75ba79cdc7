package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/garage-hub/internal/invoice"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

// Seed holds the collections SeedDemo writes to. Quotations and Vehicles
// are optional.
type Seed struct {
	Bookings   BookingCollection
	Mechanics  MechanicCollection
	Invoices   InvoiceCollection
	Quotations QuotationCollection
	Vehicles   VehicleCollection
}

// SeedDemo loads the demo workshop: two mechanics, a day of bookings
// around today, a few historical invoices and, when their collections are
// set, the customers' cars and quote requests.
func SeedDemo(ctx context.Context, s Seed, today time.Time) error {
	for _, m := range demoMechanics(today) {
		if err := s.Mechanics.InsertMechanic(ctx, m); err != nil {
			return fmt.Errorf("seed mechanic %s: %w", m.ID, err)
		}
	}
	for _, b := range demoBookings(today) {
		if err := s.Bookings.InsertBooking(ctx, b); err != nil {
			return fmt.Errorf("seed booking %s: %w", b.ID, err)
		}
	}
	for _, inv := range demoInvoices() {
		if err := s.Invoices.InsertInvoice(ctx, inv); err != nil {
			return fmt.Errorf("seed invoice %s: %w", inv.Number, err)
		}
	}
	if s.Vehicles != nil {
		for _, v := range demoVehicles(today) {
			if err := s.Vehicles.InsertVehicle(ctx, v); err != nil {
				return fmt.Errorf("seed vehicle %s: %w", v.Rego, err)
			}
		}
	}
	if s.Quotations != nil {
		for _, q := range demoQuotations() {
			if err := s.Quotations.InsertQuotation(ctx, q); err != nil {
				return fmt.Errorf("seed quotation %s: %w", q.ID, err)
			}
		}
	}
	return nil
}

func demoMechanics(now time.Time) []models.Mechanic {
	return []models.Mechanic{
		{
			ID:              "MECH001",
			Name:            "Mike Johnson",
			Specialties:     []string{"Engine Repair", "Electrical", "Brake Systems"},
			CurrentWorkload: 3,
			MaxCapacity:     5,
			Shift:           models.Shift{Start: "08:00", End: "17:00"},
			Breaks:          []models.Shift{{Start: "12:00", End: "13:00"}},
			IsAvailable:     true,
			CreatedAt:       now,
		},
		{
			ID:              "MECH002",
			Name:            "Dave Smith",
			Specialties:     []string{"WOF Inspections", "General Service", "Suspension"},
			CurrentWorkload: 2,
			MaxCapacity:     4,
			Shift:           models.Shift{Start: "09:00", End: "18:00"},
			Breaks:          []models.Shift{{Start: "12:30", End: "13:30"}},
			IsAvailable:     true,
			CreatedAt:       now.Add(time.Second),
		},
	}
}

func demoBookings(today time.Time) []models.Booking {
	day := today.Format(models.DateLayout)
	yesterday := today.AddDate(0, 0, -1).Format(models.DateLayout)
	arrived := time.Date(today.Year(), today.Month(), today.Day(), 10, 25, 0, 0, today.Location())
	actual := money.New(295)

	return []models.Booking{
		{
			ID: "1", CustomerID: "1", CustomerName: "John Smith",
			CustomerPhone: "+64 21 123 4567", CustomerEmail: "john@email.com",
			VehicleID: "1", VehicleRego: "ABC123", VehicleMake: "Toyota", VehicleModel: "Camry", VehicleYear: 2020,
			ServiceType: models.ServiceWOF, ServiceName: "WOF Inspection",
			ScheduledDate: day, ScheduledTime: "09:00", EndTime: "09:30", Duration: 30,
			Status: models.StatusConfirmed, Priority: models.PriorityHigh, Source: models.SourceCustomer,
			EstimatedCost:      money.New(65),
			AssignedMechanicID: "MECH002", AssignedMechanicName: "Dave Smith",
			Location: "Bay 1", ConfirmationSent: true, ArrivalStatus: models.ArrivalNotArrived,
			Notes:     "Customer mentioned brake noise",
			CreatedAt: today.Add(-24 * time.Hour), UpdatedAt: today.Add(-24 * time.Hour),
		},
		{
			ID: "2", CustomerID: "2", CustomerName: "Sarah Wilson",
			CustomerPhone: "+64 21 234 5678", CustomerEmail: "sarah@email.com",
			VehicleID: "2", VehicleRego: "XYZ789", VehicleMake: "Honda", VehicleModel: "Civic", VehicleYear: 2018,
			ServiceType: models.ServiceGeneral, ServiceName: "Full Service",
			ScheduledDate: day, ScheduledTime: "10:30", EndTime: "12:00", Duration: 90,
			Status: models.StatusInProgress, Priority: models.PriorityMedium, Source: models.SourceManager,
			EstimatedCost: money.New(320), ActualCost: &actual,
			AssignedMechanicID: "MECH001", AssignedMechanicName: "Mike Johnson",
			Location: "Bay 2", ConfirmationSent: true, ReminderSent: true,
			ArrivalStatus: models.ArrivalArrived, ArrivalTime: &arrived,
			Notes:     "Regular customer, prefers early morning slots",
			CreatedAt: today.Add(-72 * time.Hour), UpdatedAt: arrived,
		},
		{
			ID: "3", CustomerID: "3", CustomerName: "Mike Thompson",
			CustomerPhone: "+64 21 987 6543", CustomerEmail: "mike@email.com",
			VehicleID: "3", VehicleRego: "DEF456", VehicleMake: "Ford", VehicleModel: "Ranger", VehicleYear: 2019,
			ServiceType: models.ServiceDiagnostic, ServiceName: "Engine Diagnostic",
			ScheduledDate: yesterday, ScheduledTime: "14:00", EndTime: "15:00", Duration: 60,
			Status: models.StatusNoShow, Priority: models.PriorityMedium, Source: models.SourcePhone,
			EstimatedCost: money.New(150),
			Location:      "Bay 3", ConfirmationSent: true, ReminderSent: true,
			ArrivalStatus: models.ArrivalNoShow, RescheduleCount: 1,
			Notes:     "Engine warning light on - Customer did not arrive",
			CreatedAt: today.Add(-48 * time.Hour), UpdatedAt: today.Add(-12 * time.Hour),
		},
	}
}

func demoInvoices() []models.Invoice {
	paidAt := time.Date(2024, 2, 14, 15, 0, 0, 0, time.UTC)
	type demo struct {
		inv      models.Invoice
		services []models.LineItem
		parts    []models.LineItem
		labour   money.Amount
	}
	demos := []demo{
		{
			inv: models.Invoice{
				ID: "INV001", Number: invoice.Number(2024, 1), BookingID: "BK003",
				CustomerName: "Mike Johnson", VehicleRego: "DEF456",
				Status: models.InvoicePaid, DueDate: "2024-02-15", PaidAt: &paidAt,
				CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
			},
			services: []models.LineItem{{Name: "Brake Pad Replacement", Price: money.New(140), Quantity: 1}},
			parts:    []models.LineItem{{Name: "Brake Pads (front)", Price: money.New(54.13), Quantity: 2}},
		},
		{
			inv: models.Invoice{
				ID: "INV002", Number: invoice.Number(2024, 2), BookingID: "BK004",
				CustomerName: "Lisa Brown", VehicleRego: "GHI789",
				Status: models.InvoiceSent, DueDate: "2024-03-01",
				CreatedAt: time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC),
			},
			services: []models.LineItem{{Name: "WOF Inspection", Price: money.New(65), Quantity: 1}},
			labour:   money.New(65.43),
		},
		{
			inv: models.Invoice{
				ID: "INV003", Number: invoice.Number(2024, 3), BookingID: "BK005",
				CustomerName: "David Lee", VehicleRego: "JKL012",
				Status: models.InvoiceOverdue, DueDate: "2024-02-10",
				CreatedAt: time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC),
			},
			services: []models.LineItem{{Name: "Engine Diagnostic", Price: money.New(150), Quantity: 1}},
			parts:    []models.LineItem{{Name: "Spark Plug", Price: money.New(31.40), Quantity: 4}},
		},
	}

	out := make([]models.Invoice, 0, len(demos))
	for _, d := range demos {
		inv := d.inv
		inv.Services = d.services
		inv.Parts = d.parts
		inv.LabourCharge = d.labour
		inv.Totals = invoice.ComputeTotals(d.services, d.parts, d.labour, money.Zero, nil)
		inv.UpdatedAt = inv.CreatedAt
		out = append(out, inv)
	}
	return out
}

func demoVehicles(today time.Time) []models.Vehicle {
	date := func(days int) string { return today.AddDate(0, 0, days).Format(models.DateLayout) }
	return []models.Vehicle{
		{
			ID: "1", OwnerID: "1", Rego: "ABC123", Make: "Toyota", Model: "Camry", Year: 2020,
			WOFExpiry: date(200), RegoExpiry: date(14), LastService: date(-90),
			Color: "Silver", Engine: "2.5L 4-cylinder",
			CreatedAt: today, UpdatedAt: today,
		},
		{
			ID: "2", OwnerID: "2", Rego: "XYZ789", Make: "Honda", Model: "Civic", Year: 2018,
			WOFExpiry: date(-3), RegoExpiry: date(120), LastService: date(-200),
			Color:     "Blue",
			CreatedAt: today.Add(time.Second), UpdatedAt: today.Add(time.Second),
		},
		{
			ID: "3", OwnerID: "3", Rego: "DEF456", Make: "Ford", Model: "Ranger", Year: 2019,
			WOFExpiry: date(45), RegoExpiry: date(300),
			CreatedAt: today.Add(2 * time.Second), UpdatedAt: today.Add(2 * time.Second),
		},
	}
}

func demoQuotations() []models.Quotation {
	at := func(day, hour, minute int) time.Time { return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC) }
	approved := money.New(1250)
	inProgress := money.New(450)

	qt1 := models.Quotation{
		ID: "QT-001", CustomerID: "1", CustomerName: "John Smith",
		VehicleRego: "ABC123", CarMake: "Toyota Camry 2020", Service: "Engine Diagnostics",
		Description:   "Strange noise when starting the car, sounds like it could be timing belt related.",
		Amount:        &approved,
		Status:        models.QuoteApproved,
		EstimatedDate: "2024-02-05",
		CreatedAt:     at(20, 10, 30),
	}
	qt1.AddMessage(models.SenderCustomer, "Hi, I need a quote for my car. The engine is making a strange noise when I start it.", at(20, 10, 30))
	qt1.AddMessage(models.SenderBusiness, "Thanks for contacting us. Can you send a video of the noise?", at(20, 11, 15))
	qt1.AddMessage(models.SenderCustomer, "Sure, I've uploaded a video. You can hear the noise clearly when I turn the key.", at(20, 11, 45))
	qt1.AddMessage(models.SenderBusiness, "Quote approved! Please book an appointment.", at(22, 9, 0))

	qt2 := models.Quotation{
		ID: "QT-002", CustomerID: "2", CustomerName: "Sarah Wilson",
		VehicleRego: "XYZ789", CarMake: "Honda Civic 2018", Service: "Brake Service",
		Description: "Brakes feel spongy and making grinding noise when stopping.",
		Status:      models.QuotePending,
		CreatedAt:   at(25, 14, 0),
	}
	qt2.AddMessage(models.SenderBusiness, "We need to inspect the brake pads. Can you bring the car in?", at(25, 15, 10))

	qt3 := models.Quotation{
		ID: "QT-003", CustomerID: "1", CustomerName: "John Smith",
		VehicleRego: "ABC123", CarMake: "Toyota Camry 2020", Service: "AC Repair",
		Description:   "Air conditioning not working properly, only blowing warm air.",
		Amount:        &inProgress,
		Status:        models.QuoteInProgress,
		EstimatedDate: "2024-02-10",
		CreatedAt:     at(28, 9, 0),
	}
	qt3.AddMessage(models.SenderBusiness, "Found the issue - compressor needs replacement.", at(28, 16, 20))

	return []models.Quotation{qt1, qt2, qt3}
}
