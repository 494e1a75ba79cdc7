package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/models"
)

// MechanicInput is the payload for adding a mechanic.
type MechanicInput struct {
	Name        string         `json:"name"`
	Specialties []string       `json:"specialties"`
	MaxCapacity int            `json:"max_capacity"`
	Shift       models.Shift   `json:"shift"`
	Breaks      []models.Shift `json:"breaks"`
	IsAvailable *bool          `json:"is_available"`
}

// Mechanics manages workshop staff.
type Mechanics struct {
	mechanics db.MechanicCollection
	now       func() time.Time
}

func NewMechanics(mechanics db.MechanicCollection) *Mechanics {
	return &Mechanics{mechanics: mechanics, now: time.Now}
}

func (s *Mechanics) List(ctx context.Context) ([]models.Mechanic, error) {
	all, err := s.mechanics.FindMechanics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mechanics: %w", err)
	}
	return all, nil
}

// Create validates in and stores a new mechanic, available unless stated.
func (s *Mechanics) Create(ctx context.Context, in MechanicInput) (*models.Mechanic, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name is required")
	}
	if in.MaxCapacity < 0 {
		return nil, invalid("max_capacity must not be negative")
	}
	if err := checkShift("shift", in.Shift); err != nil {
		return nil, err
	}
	for i, b := range in.Breaks {
		if err := checkShift(fmt.Sprintf("breaks[%d]", i), b); err != nil {
			return nil, err
		}
	}

	m := models.Mechanic{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Specialties: in.Specialties,
		MaxCapacity: in.MaxCapacity,
		Shift:       in.Shift,
		Breaks:      in.Breaks,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
		CreatedAt:   s.now(),
	}
	if m.Specialties == nil {
		m.Specialties = []string{}
	}
	if err := s.mechanics.InsertMechanic(ctx, m); err != nil {
		return nil, fmt.Errorf("insert mechanic: %w", err)
	}
	return &m, nil
}

func checkShift(field string, sh models.Shift) error {
	if err := checkTime(field+".start", sh.Start); err != nil {
		return err
	}
	if err := checkTime(field+".end", sh.End); err != nil {
		return err
	}
	if sh.Start >= sh.End {
		return invalid("%s must start before it ends", field)
	}
	return nil
}
