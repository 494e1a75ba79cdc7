package models

import "time"

// Shift is a start/end pair in HH:MM.
type Shift struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// Contains reports whether hhmm falls in [Start, End).
func (s Shift) Contains(hhmm string) bool {
	return hhmm >= s.Start && hhmm < s.End
}

// Mechanic is a workshop technician.
type Mechanic struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Specialties     []string  `json:"specialties" bson:"specialties"`
	CurrentWorkload int       `json:"current_workload" bson:"current_workload"`
	MaxCapacity     int       `json:"max_capacity" bson:"max_capacity"`
	Shift           Shift     `json:"shift" bson:"shift"`
	Breaks          []Shift   `json:"breaks" bson:"breaks"`
	IsAvailable     bool      `json:"is_available" bson:"is_available"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// AtCapacity reports whether the mechanic has no free job slots.
func (m *Mechanic) AtCapacity() bool {
	return m.MaxCapacity > 0 && m.CurrentWorkload >= m.MaxCapacity
}

// Covers reports whether the mechanic can take work at hhmm.
func (m *Mechanic) Covers(hhmm string) bool {
	if !m.IsAvailable || !m.Shift.Contains(hhmm) {
		return false
	}
	for _, b := range m.Breaks {
		if b.Contains(hhmm) {
			return false
		}
	}
	return true
}
