package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/models"
)

// VehicleInput is the payload for adding or editing a car.
type VehicleInput struct {
	OwnerID     string `json:"owner_id"`
	Rego        string `json:"rego"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	WOFExpiry   string `json:"wof_expiry"`
	RegoExpiry  string `json:"rego_expiry"`
	LastService string `json:"last_service"`
	Color       string `json:"color"`
	Engine      string `json:"engine"`
}

const firstModelYear = 1900

// Vehicles keeps the customers' cars and grades their WOF and registration.
type Vehicles struct {
	vehicles db.VehicleCollection
	now      func() time.Time
}

func NewVehicles(vehicles db.VehicleCollection) *Vehicles {
	return &Vehicles{vehicles: vehicles, now: time.Now}
}

// List returns ownerID's cars, or every car when ownerID is empty.
func (s *Vehicles) List(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	var (
		all []models.Vehicle
		err error
	)
	if ownerID == "" {
		all, err = s.vehicles.FindVehicles(ctx)
	} else {
		all, err = s.vehicles.FindVehiclesByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	today := s.now()
	for i := range all {
		all[i] = all[i].WithStatus(today)
	}
	return all, nil
}

// Due returns the cars whose WOF or registration has lapsed or lapses
// within the warning period.
func (s *Vehicles) Due(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	all, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	due := make([]models.Vehicle, 0, len(all))
	for _, v := range all {
		if needsAttention(v.WOFStatus) || needsAttention(v.RegoStatus) {
			due = append(due, v)
		}
	}
	return due, nil
}

func needsAttention(s models.ExpiryStatus) bool {
	return s == models.ExpiryExpired || s == models.ExpiryWarning
}

func (s *Vehicles) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := s.vehicles.FindVehicleByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	graded := v.WithStatus(s.now())
	return &graded, nil
}

// Create stores a new car for in.OwnerID.
func (s *Vehicles) Create(ctx context.Context, in VehicleInput) (*models.Vehicle, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, invalid("owner_id is required")
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	v := models.Vehicle{ID: uuid.NewString(), OwnerID: in.OwnerID, CreatedAt: now}
	applyVehicle(&v, in, now)
	if err := s.vehicles.InsertVehicle(ctx, v); err != nil {
		return nil, duplicateRego(err, v.Rego)
	}
	graded := v.WithStatus(now)
	return &graded, nil
}

// Update replaces a car's details. The owner never changes.
func (s *Vehicles) Update(ctx context.Context, id string, in VehicleInput) (*models.Vehicle, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	v, err := s.vehicles.FindVehicleByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	rego := normaliseRego(in.Rego)
	if rego != v.Rego {
		own, err := s.vehicles.FindVehiclesByOwner(ctx, v.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("load vehicles: %w", err)
		}
		for _, other := range own {
			if other.ID != id && other.Rego == rego {
				return nil, fmt.Errorf("%w: rego %s is already registered", ErrConflict, rego)
			}
		}
	}
	now := s.now()
	applyVehicle(v, in, now)
	if err := s.vehicles.UpdateVehicle(ctx, id, *v); err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	graded := v.WithStatus(now)
	return &graded, nil
}

func (s *Vehicles) Delete(ctx context.Context, id string) error {
	if err := s.vehicles.DeleteVehicle(ctx, id); err != nil {
		return notFound(err, "vehicle", id)
	}
	return nil
}

func (s *Vehicles) check(in VehicleInput) error {
	if normaliseRego(in.Rego) == "" {
		return invalid("rego is required")
	}
	if strings.TrimSpace(in.Make) == "" || strings.TrimSpace(in.Model) == "" {
		return invalid("make and model are required")
	}
	if latest := s.now().Year() + 1; in.Year < firstModelYear || in.Year > latest {
		return invalid("year must be between %d and %d", firstModelYear, latest)
	}
	for field, date := range map[string]string{
		"wof_expiry":   in.WOFExpiry,
		"rego_expiry":  in.RegoExpiry,
		"last_service": in.LastService,
	} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return invalid("%s %q must be YYYY-MM-DD", field, date)
		}
	}
	return nil
}

func applyVehicle(v *models.Vehicle, in VehicleInput, now time.Time) {
	v.Rego = normaliseRego(in.Rego)
	v.Make = strings.TrimSpace(in.Make)
	v.Model = strings.TrimSpace(in.Model)
	v.Year = in.Year
	v.WOFExpiry = in.WOFExpiry
	v.RegoExpiry = in.RegoExpiry
	v.LastService = in.LastService
	v.Color = strings.TrimSpace(in.Color)
	v.Engine = strings.TrimSpace(in.Engine)
	v.UpdatedAt = now
}

func normaliseRego(rego string) string {
	return strings.ToUpper(strings.TrimSpace(rego))
}

func duplicateRego(err error, rego string) error {
	if errors.Is(err, db.ErrDuplicate) {
		return fmt.Errorf("%w: rego %s is already registered", ErrConflict, rego)
	}
	return fmt.Errorf("insert vehicle: %w", err)
}
