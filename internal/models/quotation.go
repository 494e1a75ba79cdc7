package models

import (
	"time"

	"github.com/ukydev/garage-hub/internal/money"
)

// QuotationStatus tracks a quote request from first message to decision.
type QuotationStatus string

const (
	QuotePending    QuotationStatus = "pending"
	QuoteInProgress QuotationStatus = "in-progress"
	QuoteApproved   QuotationStatus = "approved"
	QuoteRejected   QuotationStatus = "rejected"
)

func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotePending, QuoteInProgress, QuoteApproved, QuoteRejected:
		return true
	default:
		return false
	}
}

// Decided reports whether the customer has accepted or turned down the quote.
func (s QuotationStatus) Decided() bool {
	return s == QuoteApproved || s == QuoteRejected
}

// Sender is the side of the conversation a message came from.
type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderBusiness Sender = "business"
)

func (s Sender) IsValid() bool {
	return s == SenderCustomer || s == SenderBusiness
}

// QuotationMessage is one entry of the thread on a quotation. IDs count
// up from 1 within the thread.
type QuotationMessage struct {
	ID        int       `json:"id" bson:"id"`
	Sender    Sender    `json:"sender" bson:"sender"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Quotation is a customer's request for a price on a job, numbered
// QT-001, QT-002 and so on.
type Quotation struct {
	ID            string             `json:"id" bson:"_id"`
	CustomerID    string             `json:"customer_id" bson:"customer_id"`
	CustomerName  string             `json:"customer_name" bson:"customer_name"`
	VehicleRego   string             `json:"vehicle_rego" bson:"vehicle_rego"`
	CarMake       string             `json:"car_make" bson:"car_make"`
	Service       string             `json:"service" bson:"service"`
	Description   string             `json:"description" bson:"description"`
	Amount        *money.Amount      `json:"amount,omitempty" bson:"amount,omitempty"`
	Status        QuotationStatus    `json:"status" bson:"status"`
	EstimatedDate string             `json:"estimated_date,omitempty" bson:"estimated_date,omitempty"` // YYYY-MM-DD
	Messages      []QuotationMessage `json:"messages" bson:"messages"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// AddMessage appends a message to the thread and returns it.
func (q *Quotation) AddMessage(sender Sender, text string, at time.Time) QuotationMessage {
	m := QuotationMessage{ID: len(q.Messages) + 1, Sender: sender, Message: text, Timestamp: at}
	q.Messages = append(q.Messages, m)
	q.UpdatedAt = at
	return m
}
