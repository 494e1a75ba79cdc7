// Package service holds the garage's use cases. It validates input,
// loads records through the db collections and hands them to the pure
// query, invoice and schedule packages.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/garage-hub/internal/db"
	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFound translates a storage miss into ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, invalid("date %q must be YYYY-MM-DD", s)
	}
	return d, nil
}

func checkTime(field, s string) error {
	if _, err := time.Parse(models.TimeLayout, s); err != nil || len(s) != len(models.TimeLayout) {
		return invalid("%s %q must be HH:MM", field, s)
	}
	return nil
}

func checkAmount(field string, a money.Amount) error {
	if a.IsNegative() {
		return invalid("%s must not be negative", field)
	}
	return nil
}

func checkItems(field string, items []models.LineItem) error {
	for i, it := range items {
		if it.Name == "" {
			return invalid("%s[%d] needs a name", field, i)
		}
		if it.Quantity <= 0 {
			return invalid("%s[%d] quantity must be positive", field, i)
		}
		if err := checkAmount(fmt.Sprintf("%s[%d] price", field, i), it.Price); err != nil {
			return err
		}
	}
	return nil
}
