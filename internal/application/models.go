package application

import (
	"time"

	"github.com/example/room-scheduler/internal/scheduler"
)

// BookingInput captures caller provided booking fields.
type BookingInput struct {
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
	Kind       scheduler.Kind
}

// Booking represents a stored room booking.
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
	Kind       scheduler.Kind
	CreatedAt  time.Time
}

func (b Booking) schedulerBooking() scheduler.Booking {
	return scheduler.Booking{
		ID:         b.ID,
		Room:       b.Room,
		Day:        b.Day,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		CourseName: b.CourseName,
		Instructor: b.Instructor,
		Kind:       b.Kind,
	}
}

func schedulerBookings(bookings []Booking) []scheduler.Booking {
	out := make([]scheduler.Booking, len(bookings))
	for i, b := range bookings {
		out[i] = b.schedulerBooking()
	}
	return out
}

// AddBookingParams wraps the data required to admit a booking.
type AddBookingParams struct {
	Input BookingInput
}

// ConflictWarning describes an existing booking that overlaps an admitted one.
type ConflictWarning struct {
	BookingID string
	Type      string
	Room      string
	Day       string
	Start     string
	End       string
}

// AdmissionPolicy controls how strictly new bookings are checked.
type AdmissionPolicy struct {
	// ValidateTimes rejects bookings whose non-blank times do not parse or do not
	// move forward.
	ValidateTimes bool
	// RejectOverlaps refuses bookings that overlap an ordinary booking in the same
	// room and day. Overlaps with maintenance, and maintenance bookings themselves,
	// are always admitted with a warning.
	RejectOverlaps bool
}

// DefaultAdmissionPolicy admits every submission as supplied; overlaps are only
// reported as warnings.
func DefaultAdmissionPolicy() AdmissionPolicy {
	return AdmissionPolicy{}
}

// ImportResult summarizes a bulk replace.
type ImportResult struct {
	Count    int
	Excluded scheduler.Exclusions
}
