package xlsxfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/persistence/xlsxfile"
	"github.com/example/room-scheduler/internal/testfixtures"
)

func TestStorage(t *testing.T) {
	t.Parallel()

	testfixtures.RunBookingRepositoryContract(t, func(t *testing.T) persistence.BookingRepository {
		storage, err := xlsxfile.Open(filepath.Join(t.TempDir(), "jadwal.xlsx"))
		if err != nil {
			t.Fatalf("Open returned error: %v", err)
		}
		return storage
	})
}

func TestStorage_MissingFileLoadsEmpty(t *testing.T) {
	t.Parallel()

	storage, err := xlsxfile.Open(filepath.Join(t.TempDir(), "new", "jadwal.xlsx"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	bookings, err := storage.LoadBookings(context.Background())
	if err != nil {
		t.Fatalf("LoadBookings returned error: %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("expected empty collection, got %d", len(bookings))
	}
	if _, err := os.Stat(storage.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected load not to create the file, stat err = %v", err)
	}
}

func TestStorage_SaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	storage, err := xlsxfile.Open(filepath.Join(dir, "jadwal.xlsx"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := storage.SaveBookings(context.Background(), testfixtures.PersistenceBookings(testfixtures.NewBookingFixture())); err != nil {
		t.Fatalf("SaveBookings returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "jadwal.xlsx" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("expected only the workbook, got %v", names)
	}
}

func TestStorage_CorruptFileFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jadwal.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	storage, err := xlsxfile.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := storage.LoadBookings(context.Background()); err == nil {
		t.Fatalf("expected error for corrupt workbook")
	}
}
