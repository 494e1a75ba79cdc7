package models

import (
	"time"

	"github.com/ukydev/garage-hub/internal/money"
)

// LineItem is a billable service or part.
type LineItem struct {
	Name     string       `json:"name" bson:"name"`
	Price    money.Amount `json:"price" bson:"price"` // unit price
	Quantity int          `json:"quantity" bson:"quantity"`
}

// Total is Price × Quantity.
func (li LineItem) Total() money.Amount {
	return li.Price.Times(li.Quantity)
}

// Charge is a flat extra with no quantity.
type Charge struct {
	Name  string       `json:"name" bson:"name"`
	Price money.Amount `json:"price" bson:"price"`
}

// InvoiceTotals is the derived breakdown of an invoice.
type InvoiceTotals struct {
	ServicesTotal    money.Amount `json:"services_total" bson:"services_total"`
	PartsTotal       money.Amount `json:"parts_total" bson:"parts_total"`
	LabourCharge     money.Amount `json:"labour_charge" bson:"labour_charge"`
	DiagnosticCharge money.Amount `json:"diagnostic_charge" bson:"diagnostic_charge"`
	OtherTotal       money.Amount `json:"other_total" bson:"other_total"`
	Subtotal         money.Amount `json:"subtotal" bson:"subtotal"`
	GST              money.Amount `json:"gst" bson:"gst"`
	Total            money.Amount `json:"total" bson:"total"`
}

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	default:
		return false
	}
}

// Invoice bills a completed booking.
type Invoice struct {
	ID               string        `json:"id" bson:"_id"`
	Number           string        `json:"number" bson:"number"`
	BookingID        string        `json:"booking_id" bson:"booking_id"`
	CustomerName     string        `json:"customer_name" bson:"customer_name"`
	CustomerEmail    string        `json:"customer_email" bson:"customer_email"`
	VehicleRego      string        `json:"vehicle_rego" bson:"vehicle_rego"`
	Services         []LineItem    `json:"services" bson:"services"`
	Parts            []LineItem    `json:"parts" bson:"parts"`
	LabourCharge     money.Amount  `json:"labour_charge" bson:"labour_charge"`
	DiagnosticCharge money.Amount  `json:"diagnostic_charge" bson:"diagnostic_charge"`
	OtherCharges     []Charge      `json:"other_charges" bson:"other_charges"`
	Totals           InvoiceTotals `json:"totals" bson:"totals"`
	Status           InvoiceStatus `json:"status" bson:"status"`
	DueDate          string        `json:"due_date" bson:"due_date"` // YYYY-MM-DD
	PaidAt           *time.Time    `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	Notes            string        `json:"notes" bson:"notes"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" bson:"updated_at"`
}
