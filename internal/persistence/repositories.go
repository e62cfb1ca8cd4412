package persistence

import "context"

// BookingRepository stores the booking collection as one ordered unit.
//
// LoadBookings returns an independent snapshot in stored order; missing storage loads
// as an empty collection. SaveBookings replaces the whole collection.
type BookingRepository interface {
	LoadBookings(ctx context.Context) ([]Booking, error)
	SaveBookings(ctx context.Context, bookings []Booking) error
}
