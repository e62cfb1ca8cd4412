package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/room-scheduler/internal/persistence"
)

// RunBookingRepositoryContract exercises the behaviour every booking store must
// share. newRepo must return an empty repository for each call.
func RunBookingRepositoryContract(t *testing.T, newRepo func(t *testing.T) persistence.BookingRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store loads no bookings", func(t *testing.T) {
		repo := newRepo(t)
		bookings, err := repo.LoadBookings(ctx)
		if err != nil {
			t.Fatalf("LoadBookings returned error: %v", err)
		}
		if len(bookings) != 0 {
			t.Fatalf("expected no bookings, got %d", len(bookings))
		}
	})

	t.Run("save preserves order and fields", func(t *testing.T) {
		repo := newRepo(t)
		want := PersistenceBookings(
			NewBookingFixture(WithBookingRoom("B4C"), WithBookingDay("rabu")),
			NewBookingFixture(AsMaintenance(), WithBookingTimes("12:00", "13:00")),
			NewBookingFixture(WithBookingRoom("B4A"), WithBookingDay("RABU")),
		)
		if err := repo.SaveBookings(ctx, want); err != nil {
			t.Fatalf("SaveBookings returned error: %v", err)
		}

		got, err := repo.LoadBookings(ctx)
		if err != nil {
			t.Fatalf("LoadBookings returned error: %v", err)
		}
		assertBookingsEqual(t, got, want)
	})

	t.Run("save replaces the whole collection", func(t *testing.T) {
		repo := newRepo(t)
		first := PersistenceBookings(NewBookingFixture(), NewBookingFixture())
		if err := repo.SaveBookings(ctx, first); err != nil {
			t.Fatalf("first SaveBookings returned error: %v", err)
		}
		second := PersistenceBookings(NewBookingFixture(WithBookingRoom("B4H")))
		if err := repo.SaveBookings(ctx, second); err != nil {
			t.Fatalf("second SaveBookings returned error: %v", err)
		}

		got, err := repo.LoadBookings(ctx)
		if err != nil {
			t.Fatalf("LoadBookings returned error: %v", err)
		}
		assertBookingsEqual(t, got, second)

		if err := repo.SaveBookings(ctx, nil); err != nil {
			t.Fatalf("empty SaveBookings returned error: %v", err)
		}
		got, err = repo.LoadBookings(ctx)
		if err != nil {
			t.Fatalf("LoadBookings returned error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty collection after clearing, got %d", len(got))
		}
	})

	t.Run("blank and malformed fields round trip", func(t *testing.T) {
		repo := newRepo(t)
		want := []persistence.Booking{
			{ID: "blank"},
			{ID: "odd", Day: " Senin ", StartTime: "7am", EndTime: "25:99", Room: "LAB 1", Kind: "holiday"},
		}
		if err := repo.SaveBookings(ctx, want); err != nil {
			t.Fatalf("SaveBookings returned error: %v", err)
		}
		got, err := repo.LoadBookings(ctx)
		if err != nil {
			t.Fatalf("LoadBookings returned error: %v", err)
		}
		assertBookingsEqual(t, got, want)
	})

	t.Run("loaded slice is independent", func(t *testing.T) {
		repo := newRepo(t)
		want := PersistenceBookings(NewBookingFixture())
		if err := repo.SaveBookings(ctx, want); err != nil {
			t.Fatalf("SaveBookings returned error: %v", err)
		}
		want[0].Room = "mutated after save"

		got, err := repo.LoadBookings(ctx)
		if err != nil {
			t.Fatalf("LoadBookings returned error: %v", err)
		}
		if got[0].Room == "mutated after save" {
			t.Fatalf("repository retained caller slice")
		}
		got[0].Room = "mutated after load"

		again, err := repo.LoadBookings(ctx)
		if err != nil {
			t.Fatalf("LoadBookings returned error: %v", err)
		}
		if again[0].Room == "mutated after load" {
			t.Fatalf("repository returned shared slice")
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		repo := newRepo(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := repo.LoadBookings(cancelled); err == nil {
			t.Fatalf("expected LoadBookings to fail on cancelled context")
		}
		if err := repo.SaveBookings(cancelled, PersistenceBookings(NewBookingFixture())); err == nil {
			t.Fatalf("expected SaveBookings to fail on cancelled context")
		}
	})
}

func assertBookingsEqual(t *testing.T, got, want []persistence.Booking) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d bookings, got %d", len(want), len(got))
	}
	for i := range want {
		g, w := got[i], want[i]
		// Stores may round timestamps to their own precision.
		if !g.CreatedAt.Truncate(time.Millisecond).Equal(w.CreatedAt.Truncate(time.Millisecond)) {
			t.Fatalf("booking %d: CreatedAt = %v, want %v", i, g.CreatedAt, w.CreatedAt)
		}
		g.CreatedAt, w.CreatedAt = time.Time{}, time.Time{}
		if g != w {
			t.Fatalf("booking %d mismatch:\n got  %+v\n want %+v", i, g, w)
		}
	}
}
