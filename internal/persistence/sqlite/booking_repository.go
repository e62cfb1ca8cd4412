package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/persistence/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	selectBookingsSQL = `SELECT id, instructor, course_name, credits, section, day, start_time, end_time,
		building, floor, room, class_type, kind, created_at
		FROM bookings ORDER BY position`
	insertBookingSQL = `INSERT INTO bookings (position, id, instructor, course_name, credits, section, day,
		start_time, end_time, building, floor, room, class_type, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// Storage is a BookingRepository backed by SQLite.
type Storage struct {
	pool   *ConnectionPool
	retry  RetryConfig
	logger *slog.Logger
}

// Open connects to the database described by config and applies pending migrations.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Storage, error) {
	const op = "sqlite.Open"
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	migrations, err := migration.Load(migrationFiles, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	executor := migration.NewExecutor(pool.DB(), migration.SQLite)
	if err := migration.Run(ctx, executor, migrations, logger.With("component", "sqlite_migrations")); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{pool: pool, retry: DefaultRetryConfig(), logger: logger}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// LoadBookings returns every booking in stored order.
func (s *Storage) LoadBookings(ctx context.Context) ([]persistence.Booking, error) {
	const op = "sqlite.LoadBookings"

	var bookings []persistence.Booking
	err := withRetry(ctx, s.retry, func() error {
		loaded, err := s.queryBookings(ctx)
		if err != nil {
			return err
		}
		bookings = loaded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bookings, nil
}

func (s *Storage) queryBookings(ctx context.Context) ([]persistence.Booking, error) {
	rows, err := s.pool.DB().QueryContext(ctx, selectBookingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []persistence.Booking{}
	for rows.Next() {
		var (
			b         persistence.Booking
			createdAt string
		)
		if err := rows.Scan(&b.ID, &b.Instructor, &b.CourseName, &b.Credits, &b.Section, &b.Day,
			&b.StartTime, &b.EndTime, &b.Building, &b.Floor, &b.Room, &b.ClassType, &b.Kind, &createdAt); err != nil {
			return nil, err
		}
		if b.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// SaveBookings replaces the stored collection in one transaction.
func (s *Storage) SaveBookings(ctx context.Context, bookings []persistence.Booking) error {
	const op = "sqlite.SaveBookings"

	err := withRetry(ctx, s.retry, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
				return err
			}
			stmt, err := tx.PrepareContext(ctx, insertBookingSQL)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for i, b := range bookings {
				if _, err := stmt.ExecContext(ctx, i+1, b.ID, b.Instructor, b.CourseName, b.Credits, b.Section,
					b.Day, b.StartTime, b.EndTime, b.Building, b.Floor, b.Room, b.ClassType, b.Kind,
					formatTimestamp(b.CreatedAt)); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Debug("bookings saved", "count", len(bookings))
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", value, err)
	}
	return t, nil
}
