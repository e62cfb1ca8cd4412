// Package xlsxfile keeps the booking collection in a single .xlsx workbook, the
// format the schedule was maintained in by hand.
package xlsxfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/spreadsheet"
)

// Storage is a BookingRepository backed by a workbook file. Writes go to a
// temporary file in the same directory that is then renamed over the target, so
// readers never see a partial workbook.
type Storage struct {
	mu   sync.RWMutex
	path string
}

// Open returns a Storage for path, creating its parent directory. The file itself
// is created on the first save.
func Open(path string) (*Storage, error) {
	const op = "xlsxfile.Open"
	if path == "" {
		return nil, fmt.Errorf("%s: path cannot be empty", op)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{path: path}, nil
}

// Path returns the workbook location.
func (s *Storage) Path() string {
	return s.path
}

// LoadBookings reads the workbook. A missing file is an empty collection.
func (s *Storage) LoadBookings(ctx context.Context) ([]persistence.Booking, error) {
	const op = "xlsxfile.LoadBookings"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []persistence.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	bookings, err := spreadsheet.ReadBookings(f)
	if errors.Is(err, spreadsheet.ErrNoColumns) {
		return []persistence.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, s.path, err)
	}
	return bookings, nil
}

// SaveBookings rewrites the workbook with bookings.
func (s *Storage) SaveBookings(ctx context.Context, bookings []persistence.Booking) (err error) {
	const op = "xlsxfile.SaveBookings"
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = spreadsheet.WriteBookings(tmp, bookings); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (s *Storage) Close() error {
	return nil
}
