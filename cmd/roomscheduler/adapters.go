package main

import (
	"context"
	"io"

	"github.com/example/room-scheduler/internal/application"
	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/scheduler"
	"github.com/example/room-scheduler/internal/spreadsheet"
)

type bookingStoreAdapter struct {
	repo persistence.BookingRepository
}

func newBookingStoreAdapter(repo persistence.BookingRepository) *bookingStoreAdapter {
	return &bookingStoreAdapter{repo: repo}
}

func (a *bookingStoreAdapter) LoadBookings(ctx context.Context) ([]application.Booking, error) {
	models, err := a.repo.LoadBookings(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (a *bookingStoreAdapter) SaveBookings(ctx context.Context, bookings []application.Booking) error {
	return a.repo.SaveBookings(ctx, toPersistenceBookings(bookings))
}

type spreadsheetAdapter struct{}

func (spreadsheetAdapter) DecodeBookings(r io.Reader) ([]application.Booking, error) {
	models, err := spreadsheet.ReadBookings(r)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (spreadsheetAdapter) EncodeBookings(w io.Writer, bookings []application.Booking) error {
	return spreadsheet.WriteBookings(w, toPersistenceBookings(bookings))
}

func (spreadsheetAdapter) EncodeGrid(w io.Writer, grid *scheduler.Grid) error {
	return spreadsheet.WriteGrid(w, grid)
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	return application.Booking{
		ID:         model.ID,
		Instructor: model.Instructor,
		CourseName: model.CourseName,
		Credits:    model.Credits,
		Section:    model.Section,
		Day:        model.Day,
		StartTime:  model.StartTime,
		EndTime:    model.EndTime,
		Building:   model.Building,
		Floor:      model.Floor,
		Room:       model.Room,
		ClassType:  model.ClassType,
		Kind:       scheduler.Kind(model.Kind),
		CreatedAt:  model.CreatedAt,
	}
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:         booking.ID,
		Instructor: booking.Instructor,
		CourseName: booking.CourseName,
		Credits:    booking.Credits,
		Section:    booking.Section,
		Day:        booking.Day,
		StartTime:  booking.StartTime,
		EndTime:    booking.EndTime,
		Building:   booking.Building,
		Floor:      booking.Floor,
		Room:       booking.Room,
		ClassType:  booking.ClassType,
		Kind:       string(booking.Kind),
		CreatedAt:  booking.CreatedAt,
	}
}

func toApplicationBookings(models []persistence.Booking) []application.Booking {
	out := make([]application.Booking, 0, len(models))
	for _, model := range models {
		out = append(out, toApplicationBooking(model))
	}
	return out
}

func toPersistenceBookings(bookings []application.Booking) []persistence.Booking {
	out := make([]persistence.Booking, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toPersistenceBooking(booking))
	}
	return out
}
