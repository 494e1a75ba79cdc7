package db

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/garage-hub/internal/models"
)

// table is an insertion-ordered map guarded by a RWMutex.
type table[T any] struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) insert(id string, row T) error {
	return t.insertUnique(id, row, nil)
}

// insertUnique inserts row unless its id exists or clash reports a
// conflict with a stored row. Both checks run under the write lock.
func (t *table[T]) insertUnique(id string, row T, clash func(*T) string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; ok {
		return fmt.Errorf("%w: id %q", ErrDuplicate, id)
	}
	if clash != nil {
		for _, existing := range t.order {
			stored := t.rows[existing]
			if field := clash(&stored); field != "" {
				return fmt.Errorf("%w: %s", ErrDuplicate, field)
			}
		}
	}
	t.rows[id] = row
	t.order = append(t.order, id)
	return nil
}

func (t *table[T]) get(id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (t *table[T]) replace(id string, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.rows[id] = row
	return nil
}

// update applies fn to the stored row under the write lock.
func (t *table[T]) update(id string, fn func(*T)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		return ErrNotFound
	}
	fn(&row)
	t.rows[id] = row
	return nil
}

func (t *table[T]) list(keep func(*T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(&row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *table[T]) find(match func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		row := t.rows[id]
		if match(&row) {
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryStore keeps every collection in process memory. It implements
// all the collection interfaces and is safe for concurrent use.
type MemoryStore struct {
	bookings   *table[models.Booking]
	mechanics  *table[models.Mechanic]
	invoices   *table[models.Invoice]
	users      *table[models.User]
	quotations *table[models.Quotation]
	vehicles   *table[models.Vehicle]
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings:  newTable[models.Booking](),
		mechanics: newTable[models.Mechanic](),
		invoices:  newTable[models.Invoice](),
		users:     newTable[models.User](),

		quotations: newTable[models.Quotation](),
		vehicles:   newTable[models.Vehicle](),
	}
}

var (
	_ BookingCollection  = (*MemoryStore)(nil)
	_ MechanicCollection = (*MemoryStore)(nil)
	_ InvoiceCollection  = (*MemoryStore)(nil)
	_ UserCollection     = (*MemoryStore)(nil)

	_ QuotationCollection = (*MemoryStore)(nil)
	_ VehicleCollection   = (*MemoryStore)(nil)
)

func (s *MemoryStore) InsertBooking(_ context.Context, booking models.Booking) error {
	return s.bookings.insert(booking.ID, booking)
}

func (s *MemoryStore) FindBookings(_ context.Context) ([]models.Booking, error) {
	return s.bookings.list(nil), nil
}

func (s *MemoryStore) FindBookingsByDate(_ context.Context, date string) ([]models.Booking, error) {
	return s.bookings.list(func(b *models.Booking) bool { return b.ScheduledDate == date }), nil
}

func (s *MemoryStore) FindBookingByID(_ context.Context, id string) (*models.Booking, error) {
	return s.bookings.get(id)
}

func (s *MemoryStore) UpdateBooking(_ context.Context, id string, booking models.Booking) error {
	booking.ID = id
	return s.bookings.replace(id, booking)
}

func (s *MemoryStore) InsertMechanic(_ context.Context, mechanic models.Mechanic) error {
	return s.mechanics.insert(mechanic.ID, mechanic)
}

func (s *MemoryStore) FindMechanics(_ context.Context) ([]models.Mechanic, error) {
	return s.mechanics.list(nil), nil
}

func (s *MemoryStore) FindMechanicByID(_ context.Context, id string) (*models.Mechanic, error) {
	return s.mechanics.get(id)
}

func (s *MemoryStore) InsertInvoice(_ context.Context, invoice models.Invoice) error {
	return s.invoices.insert(invoice.ID, invoice)
}

func (s *MemoryStore) FindInvoices(_ context.Context) ([]models.Invoice, error) {
	return s.invoices.list(nil), nil
}

func (s *MemoryStore) FindInvoiceByID(_ context.Context, id string) (*models.Invoice, error) {
	return s.invoices.get(id)
}

func (s *MemoryStore) UpdateInvoice(_ context.Context, id string, invoice models.Invoice) error {
	invoice.ID = id
	return s.invoices.replace(id, invoice)
}

func (s *MemoryStore) CountInvoicesWithPrefix(_ context.Context, prefix string) (int, error) {
	return len(s.invoices.list(func(inv *models.Invoice) bool {
		return strings.HasPrefix(inv.Number, prefix)
	})), nil
}

func (s *MemoryStore) InsertUser(_ context.Context, user models.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.IsActive = true
	return s.users.insertUnique(user.ID, user, func(u *models.User) string {
		switch {
		case u.Username == user.Username:
			return "username"
		case u.Email == user.Email:
			return "email"
		}
		return ""
	})
}

func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	return s.users.get(id)
}

func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.users.find(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.users.find(func(u *models.User) bool { return u.Email == email })
}

func (s *MemoryStore) FindUsers(_ context.Context) ([]models.User, error) {
	return s.users.list(nil), nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, user models.User) error {
	user.ID = id
	user.UpdatedAt = time.Now()
	return s.users.replace(id, user)
}

func (s *MemoryStore) UpdateLastLogin(_ context.Context, id string) error {
	now := time.Now()
	return s.users.update(id, func(u *models.User) {
		u.LastLogin = &now
		u.UpdatedAt = now
	})
}

func (s *MemoryStore) InsertQuotation(_ context.Context, q models.Quotation) error {
	return s.quotations.insert(q.ID, q)
}

func (s *MemoryStore) FindQuotations(_ context.Context) ([]models.Quotation, error) {
	return s.quotations.list(nil), nil
}

func (s *MemoryStore) FindQuotationByID(_ context.Context, id string) (*models.Quotation, error) {
	return s.quotations.get(id)
}

func (s *MemoryStore) UpdateQuotation(_ context.Context, id string, q models.Quotation) error {
	q.ID = id
	return s.quotations.replace(id, q)
}

func (s *MemoryStore) CountQuotations(_ context.Context) (int, error) {
	return s.quotations.len(), nil
}

func (s *MemoryStore) InsertVehicle(_ context.Context, v models.Vehicle) error {
	return s.vehicles.insertUnique(v.ID, v, func(existing *models.Vehicle) string {
		if existing.OwnerID == v.OwnerID && existing.Rego == v.Rego {
			return "rego"
		}
		return ""
	})
}

func (s *MemoryStore) FindVehicles(_ context.Context) ([]models.Vehicle, error) {
	return s.vehicles.list(nil), nil
}

func (s *MemoryStore) FindVehiclesByOwner(_ context.Context, ownerID string) ([]models.Vehicle, error) {
	return s.vehicles.list(func(v *models.Vehicle) bool { return v.OwnerID == ownerID }), nil
}

func (s *MemoryStore) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	return s.vehicles.get(id)
}

func (s *MemoryStore) UpdateVehicle(_ context.Context, id string, v models.Vehicle) error {
	v.ID = id
	return s.vehicles.replace(id, v)
}

func (s *MemoryStore) DeleteVehicle(_ context.Context, id string) error {
	return s.vehicles.delete(id)
}
