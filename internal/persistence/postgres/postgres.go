// Package postgres stores the booking collection in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/persistence/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// saveLockID is the advisory lock taken by every SaveBookings transaction.
const saveLockID = 7_350_001

const selectBookingsSQL = `SELECT id, instructor, course_name, credits, section, day, start_time, end_time,
	building, floor, room, class_type, kind, created_at
	FROM bookings ORDER BY position`

var bookingColumns = []string{
	"position", "id", "instructor", "course_name", "credits", "section", "day",
	"start_time", "end_time", "building", "floor", "room", "class_type", "kind", "created_at",
}

// Config holds PostgreSQL connection settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Storage is a BookingRepository backed by PostgreSQL.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to PostgreSQL and applies pending migrations.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Storage, error) {
	const op = "postgres.Open"
	if logger == nil {
		logger = slog.Default()
	}
	if config.DSN == "" {
		return nil, fmt.Errorf("%s: dsn cannot be empty", op)
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	migrations, err := migration.Load(migrationFiles, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := migration.Run(ctx, migration.NewExecutor(db, migration.Postgres), migrations, logger.With("component", "postgres_migrations")); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.db.Close()
}

// LoadBookings returns every booking in stored order.
func (s *Storage) LoadBookings(ctx context.Context) ([]persistence.Booking, error) {
	const op = "postgres.LoadBookings"

	rows, err := s.db.QueryContext(ctx, selectBookingsSQL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, MapError(err))
	}
	defer rows.Close()

	bookings := []persistence.Booking{}
	for rows.Next() {
		var (
			b         persistence.Booking
			createdAt pq.NullTime
		)
		if err := rows.Scan(&b.ID, &b.Instructor, &b.CourseName, &b.Credits, &b.Section, &b.Day,
			&b.StartTime, &b.EndTime, &b.Building, &b.Floor, &b.Room, &b.ClassType, &b.Kind, &createdAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, MapError(err))
		}
		if createdAt.Valid {
			b.CreatedAt = createdAt.Time
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, MapError(err))
	}
	return bookings, nil
}

// SaveBookings replaces the stored collection in one transaction, streaming rows
// with COPY.
func (s *Storage) SaveBookings(ctx context.Context, bookings []persistence.Booking) (err error) {
	const op = "postgres.SaveBookings"
	defer func() {
		if err != nil {
			err = fmt.Errorf("%s: %w", op, MapError(err))
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, saveLockID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("bookings", bookingColumns...))
	if err != nil {
		return err
	}
	for i, b := range bookings {
		var createdAt any
		if !b.CreatedAt.IsZero() {
			createdAt = b.CreatedAt.UTC()
		}
		if _, err = stmt.ExecContext(ctx, i+1, b.ID, b.Instructor, b.CourseName, b.Credits, b.Section, b.Day,
			b.StartTime, b.EndTime, b.Building, b.Floor, b.Room, b.ClassType, b.Kind, createdAt); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err = stmt.Close(); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("bookings saved", "count", len(bookings))
	return nil
}

// busyCodes are SQLSTATE codes that mean another writer got in the way.
var busyCodes = map[pq.ErrorCode]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled by statement_timeout
}

// MapError translates driver errors into persistence errors.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && busyCodes[pqErr.Code] {
		return fmt.Errorf("%w: %v", persistence.ErrBusy, err)
	}
	return err
}
