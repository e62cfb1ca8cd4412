// Package memory keeps the booking collection in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/example/room-scheduler/internal/persistence"
)

// Storage is a BookingRepository held in memory. Every read and write copies the
// slice so callers never share backing arrays with the store.
type Storage struct {
	mu       sync.RWMutex
	bookings []persistence.Booking
}

// New returns an empty Storage, optionally seeded with bookings.
func New(seed ...persistence.Booking) *Storage {
	return &Storage{bookings: persistence.CloneBookings(seed)}
}

// LoadBookings returns a snapshot in stored order.
func (s *Storage) LoadBookings(ctx context.Context) ([]persistence.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return persistence.CloneBookings(s.bookings), nil
}

// SaveBookings replaces the stored collection.
func (s *Storage) SaveBookings(ctx context.Context, bookings []persistence.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.bookings = persistence.CloneBookings(bookings)
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}
