package models

import "time"

// ExpiryStatus grades how close a WOF or registration is to lapsing.
type ExpiryStatus string

const (
	ExpiryOK      ExpiryStatus = "ok"
	ExpiryWarning ExpiryStatus = "warning"
	ExpiryExpired ExpiryStatus = "expired"
	// ExpiryUnknown is reported when no usable expiry date is on file.
	ExpiryUnknown ExpiryStatus = "unknown"
)

// ExpiryWarningDays is how far ahead an expiry starts to warn.
const ExpiryWarningDays = 30

// Vehicle is a car registered to a customer account.
type Vehicle struct {
	ID          string `json:"id" bson:"_id"`
	OwnerID     string `json:"owner_id" bson:"owner_id"`
	Rego        string `json:"rego" bson:"rego"`
	Make        string `json:"make" bson:"make"`
	Model       string `json:"model" bson:"model"`
	Year        int    `json:"year" bson:"year"`
	WOFExpiry   string `json:"wof_expiry" bson:"wof_expiry"`   // YYYY-MM-DD
	RegoExpiry  string `json:"rego_expiry" bson:"rego_expiry"` // YYYY-MM-DD
	LastService string `json:"last_service,omitempty" bson:"last_service,omitempty"`
	Color       string `json:"color,omitempty" bson:"color,omitempty"`
	Engine      string `json:"engine,omitempty" bson:"engine,omitempty"`

	// Computed on read, never stored.
	WOFStatus  ExpiryStatus `json:"wof_status,omitempty" bson:"-"`
	RegoStatus ExpiryStatus `json:"rego_status,omitempty" bson:"-"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// DaysUntil returns the whole days from today's date to expiry (YYYY-MM-DD).
// Negative once the date has passed.
func DaysUntil(expiry string, today time.Time) (int, bool) {
	d, err := time.Parse(DateLayout, expiry)
	if err != nil {
		return 0, false
	}
	y, m, day := today.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return int(d.Sub(start).Hours() / 24), true
}

// ExpiryStatusOn grades expiry as seen on today: expired once past,
// warning within ExpiryWarningDays, otherwise ok.
func ExpiryStatusOn(expiry string, today time.Time) ExpiryStatus {
	days, ok := DaysUntil(expiry, today)
	switch {
	case !ok:
		return ExpiryUnknown
	case days < 0:
		return ExpiryExpired
	case days <= ExpiryWarningDays:
		return ExpiryWarning
	default:
		return ExpiryOK
	}
}

// WithStatus returns v with its WOF and registration graded for today.
func (v Vehicle) WithStatus(today time.Time) Vehicle {
	v.WOFStatus = ExpiryStatusOn(v.WOFExpiry, today)
	v.RegoStatus = ExpiryStatusOn(v.RegoExpiry, today)
	return v
}
