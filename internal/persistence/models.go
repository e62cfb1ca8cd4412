package persistence

import "time"

// Booking is one stored schedule row. Every field except CreatedAt is kept as the
// text the caller or the imported file supplied; interpretation happens when the
// schedule is projected.
type Booking struct {
	ID         string
	Instructor string
	CourseName string
	Credits    string
	Section    string
	Day        string
	StartTime  string
	EndTime    string
	Building   string
	Floor      string
	Room       string
	ClassType  string
	Kind       string
	CreatedAt  time.Time
}

// CloneBookings returns an independent copy of the slice.
func CloneBookings(bookings []Booking) []Booking {
	if bookings == nil {
		return []Booking{}
	}
	out := make([]Booking, len(bookings))
	copy(out, bookings)
	return out
}
