package sqlite_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/persistence/sqlite"
	"github.com/example/room-scheduler/internal/testfixtures"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStorage(t *testing.T, path string) *sqlite.Storage {
	t.Helper()
	config := sqlite.DefaultConfig(path)
	config.Synchronous = "OFF"
	storage, err := sqlite.Open(context.Background(), config, quietLogger())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestStorage(t *testing.T) {
	t.Parallel()

	testfixtures.RunBookingRepositoryContract(t, func(t *testing.T) persistence.BookingRepository {
		return openTestStorage(t, filepath.Join(t.TempDir(), "bookings.db"))
	})
}

func TestStorage_InMemory(t *testing.T) {
	t.Parallel()

	testfixtures.RunBookingRepositoryContract(t, func(t *testing.T) persistence.BookingRepository {
		storage, err := sqlite.Open(context.Background(), sqlite.MemoryConfig(), quietLogger())
		if err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
		t.Cleanup(func() { storage.Close() })
		return storage
	})
}

func TestStorage_ReopenKeepsBookings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "bookings.db")
	created := time.Date(2024, time.May, 6, 7, 8, 9, 123456789, time.FixedZone("WIB", 7*60*60))
	want := []persistence.Booking{
		testfixtures.NewBookingFixture(testfixtures.WithBookingID("X1"), testfixtures.WithBookingCreatedAt(created)).Persistence(),
	}

	first := openTestStorage(t, path)
	if err := first.SaveBookings(context.Background(), want); err != nil {
		t.Fatalf("SaveBookings returned error: %v", err)
	}
	first.Close()

	second := openTestStorage(t, path)
	got, err := second.LoadBookings(context.Background())
	if err != nil {
		t.Fatalf("LoadBookings returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "X1" {
		t.Fatalf("unexpected bookings after reopen: %+v", got)
	}
	if !got[0].CreatedAt.Equal(created) {
		t.Fatalf("expected timestamp %v, got %v", created, got[0].CreatedAt)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*sqlite.Config)
		wantErr bool
	}{
		{"default", func(*sqlite.Config) {}, false},
		{"empty path", func(c *sqlite.Config) { c.Path = "" }, true},
		{"bad journal", func(c *sqlite.Config) { c.JournalMode = "FAST" }, true},
		{"bad sync", func(c *sqlite.Config) { c.Synchronous = "SOMETIMES" }, true},
		{"negative timeout", func(c *sqlite.Config) { c.BusyTimeout = -time.Second }, true},
		{"pooled memory", func(c *sqlite.Config) { c.Path = sqlite.MemoryPath }, true},
	}
	for _, tc := range tests {
		config := sqlite.DefaultConfig("data/bookings.db")
		tc.mutate(&config)
		if err := config.Validate(); (err != nil) != tc.wantErr {
			t.Fatalf("%s: Validate() error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestConfigDSN(t *testing.T) {
	t.Parallel()

	dsn := sqlite.DefaultConfig("data/bookings.db").DSN()
	want := "data/bookings.db?_pragma=busy_timeout%285000%29&_pragma=journal_mode%28WAL%29&_pragma=synchronous%28NORMAL%29"
	if dsn != want {
		t.Fatalf("DSN() = %q, want %q", dsn, want)
	}

	if got := (sqlite.Config{Path: "plain.db"}).DSN(); got != "plain.db" {
		t.Fatalf("expected bare path without pragmas, got %q", got)
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	if err := sqlite.MapError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := sqlite.MapError(errors.New("database is locked (5) (SQLITE_BUSY)")); !errors.Is(err, persistence.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	other := errors.New("no such table")
	if err := sqlite.MapError(other); err != other {
		t.Fatalf("expected unrelated error to pass through, got %v", err)
	}
}
