package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-scheduler/internal/application"
	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/scheduler"
)

var bookingCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// BookingFixture represents a deterministic booking row that can be materialised
// for application or persistence tests.
type BookingFixture struct {
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

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking in room B4A on SENIN from 07:00
// to 07:50, with optional overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:         fmt.Sprintf("booking-%03d", idx),
		Instructor: fmt.Sprintf("Dosen %03d", idx),
		CourseName: fmt.Sprintf("Mata Kuliah %03d", idx),
		Credits:    "3",
		Section:    "A",
		Day:        "SENIN",
		StartTime:  "07:00",
		EndTime:    "07:50",
		Building:   "B4",
		Floor:      "1",
		Room:       "B4A",
		ClassType:  "Teori",
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRoom overrides the room.
func WithBookingRoom(room string) BookingOption {
	return func(f *BookingFixture) {
		f.Room = room
	}
}

// WithBookingDay overrides the day name.
func WithBookingDay(day string) BookingOption {
	return func(f *BookingFixture) {
		f.Day = day
	}
}

// WithBookingTimes sets the start and end times.
func WithBookingTimes(start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingCourse sets the course name and instructor.
func WithBookingCourse(course, instructor string) BookingOption {
	return func(f *BookingFixture) {
		f.CourseName = course
		f.Instructor = instructor
	}
}

// WithBookingKind sets the explicit kind.
func WithBookingKind(kind scheduler.Kind) BookingOption {
	return func(f *BookingFixture) {
		f.Kind = kind
	}
}

// AsMaintenance marks the booking as maintenance through both the kind and the
// course name.
func AsMaintenance() BookingOption {
	return func(f *BookingFixture) {
		f.Kind = scheduler.KindMaintenance
		f.CourseName = "MAINTENANCE"
	}
}

// WithBookingCreatedAt sets the created timestamp.
func WithBookingCreatedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = t
	}
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:         f.ID,
		Instructor: f.Instructor,
		CourseName: f.CourseName,
		Credits:    f.Credits,
		Section:    f.Section,
		Day:        f.Day,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Building:   f.Building,
		Floor:      f.Floor,
		Room:       f.Room,
		ClassType:  f.ClassType,
		Kind:       f.Kind,
		CreatedAt:  f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:         f.ID,
		Instructor: f.Instructor,
		CourseName: f.CourseName,
		Credits:    f.Credits,
		Section:    f.Section,
		Day:        f.Day,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Building:   f.Building,
		Floor:      f.Floor,
		Room:       f.Room,
		ClassType:  f.ClassType,
		Kind:       string(f.Kind),
		CreatedAt:  f.CreatedAt,
	}
}

// Scheduler returns the fixture as the projection input type.
func (f BookingFixture) Scheduler() scheduler.Booking {
	return scheduler.Booking{
		ID:         f.ID,
		Room:       f.Room,
		Day:        f.Day,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		CourseName: f.CourseName,
		Instructor: f.Instructor,
		Kind:       f.Kind,
	}
}

// Input returns the fixture as an application.BookingInput.
func (f BookingFixture) Input() application.BookingInput {
	return application.BookingInput{
		Instructor: f.Instructor,
		CourseName: f.CourseName,
		Credits:    f.Credits,
		Section:    f.Section,
		Day:        f.Day,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Building:   f.Building,
		Floor:      f.Floor,
		Room:       f.Room,
		ClassType:  f.ClassType,
		Kind:       f.Kind,
	}
}

// PersistenceBookings materialises several fixtures for repository seeding.
func PersistenceBookings(fixtures ...BookingFixture) []persistence.Booking {
	out := make([]persistence.Booking, len(fixtures))
	for i, f := range fixtures {
		out[i] = f.Persistence()
	}
	return out
}
