package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/scheduler"
)

// storeLockKey names the single lock guarding the booking collection.
const storeLockKey = "bookings"

// BookingStore captures the persistence interactions needed by the service.
type BookingStore interface {
	LoadBookings(ctx context.Context) ([]Booking, error)
	SaveBookings(ctx context.Context, bookings []Booking) error
}

// Catalog exposes the static projection axes.
type Catalog interface {
	Layout() scheduler.Layout
	Rooms() []string
	DayFor(weekday time.Weekday) (string, bool)
}

// Locker grants exclusive ownership of a key for a bounded time. Unlock must be
// handed the token returned by the matching Lock.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Spreadsheet converts bookings and grids to and from workbook files.
type Spreadsheet interface {
	DecodeBookings(r io.Reader) ([]Booking, error)
	EncodeBookings(w io.Writer, bookings []Booking) error
	EncodeGrid(w io.Writer, grid *scheduler.Grid) error
}

// LockRetry bounds how long a writer waits for the store lock.
type LockRetry struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultLockRetry waits roughly five seconds in total.
func DefaultLockRetry() LockRetry {
	return LockRetry{Attempts: 20, InitialDelay: 25 * time.Millisecond, MaxDelay: 500 * time.Millisecond}
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Store       BookingStore
	Catalog     Catalog
	Locker      Locker
	Spreadsheet Spreadsheet
	Policy      AdmissionPolicy
	IDGenerator func() string
	Now         func() time.Time
	Location    *time.Location
	LockTTL     time.Duration
	LockRetry   LockRetry
	Logger      *slog.Logger
}

// BookingService admits bookings and derives the grid and live views from one store.
type BookingService struct {
	store       BookingStore
	catalog     Catalog
	locker      Locker
	spreadsheet Spreadsheet
	policy      AdmissionPolicy
	idGenerator func() string
	now         func() time.Time
	location    *time.Location
	lockTTL     time.Duration
	retry       LockRetry
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(deps BookingServiceDeps) *BookingService {
	svc := &BookingService{
		store:       deps.Store,
		catalog:     deps.Catalog,
		locker:      deps.Locker,
		spreadsheet: deps.Spreadsheet,
		policy:      deps.Policy,
		idGenerator: deps.IDGenerator,
		now:         deps.Now,
		location:    deps.Location,
		lockTTL:     deps.LockTTL,
		retry:       deps.LockRetry,
		logger:      defaultLogger(deps.Logger),
	}
	if svc.idGenerator == nil {
		svc.idGenerator = func() string { return "" }
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.location == nil {
		svc.location = time.Local
	}
	if svc.lockTTL <= 0 {
		svc.lockTTL = 10 * time.Second
	}
	if svc.retry.Attempts <= 0 {
		svc.retry = DefaultLockRetry()
	}
	return svc
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// AddBooking validates and appends one booking, returning overlaps with existing bookings
// in the same room and day as warnings.
func (s *BookingService) AddBooking(ctx context.Context, params AddBookingParams) (booking Booking, warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	input := normalizeBookingInput(params.Input)
	logger := s.loggerWith(ctx, "AddBooking", "room", input.Room, "day", input.Day)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add booking", "error", err, "error_kind", ErrorKind(err), "conflicts", len(warnings))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking added", "conflicts", len(warnings))
	}()

	vErr := validateBookingKind(input.Kind)
	if s.policy.ValidateTimes {
		vErr.merge(validateBookingTimes(input))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	candidate := Booking{
		ID:         s.idGenerator(),
		Instructor: input.Instructor,
		CourseName: input.CourseName,
		Credits:    input.Credits,
		Section:    input.Section,
		Day:        input.Day,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Building:   input.Building,
		Floor:      input.Floor,
		Room:       input.Room,
		ClassType:  input.ClassType,
		Kind:       scheduler.DeriveKind(input.Kind, input.CourseName),
		CreatedAt:  s.now(),
	}

	err = s.withStoreLock(ctx, func() error {
		existing, loadErr := s.store.LoadBookings(ctx)
		if loadErr != nil {
			return mapStoreError(loadErr)
		}

		conflicts := scheduler.DetectConflicts(schedulerBookings(existing), candidate.schedulerBooking())
		warnings = toConflictWarnings(conflicts)
		if s.policy.RejectOverlaps && !candidate.schedulerBooking().IsMaintenance() {
			for _, c := range conflicts {
				if c.Type == scheduler.ConflictTypeRoom {
					return fmt.Errorf("%w: room %s on %s overlaps booking %s at %s", ErrConflict, c.Room, c.Day, c.WithBookingID, c.Overlap)
				}
			}
		}

		updated := append(existing, candidate)
		if saveErr := s.store.SaveBookings(ctx, updated); saveErr != nil {
			return mapStoreError(saveErr)
		}
		return nil
	})
	if err != nil {
		return
	}

	booking = candidate
	return
}

// ListBookings returns every stored booking in stored order.
func (s *BookingService) ListBookings(ctx context.Context) (bookings []Booking, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListBookings")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "bookings listed", "count", len(bookings))
	}()

	bookings, err = s.store.LoadBookings(ctx)
	if err != nil {
		err = mapStoreError(err)
		return
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return
}

// ReplaceBookings swaps the whole collection. Rows are stored as supplied; rows
// without an ID receive a fresh one. No time validation is applied.
func (s *BookingService) ReplaceBookings(ctx context.Context, bookings []Booking) (result ImportResult, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "ReplaceBookings", "rows", len(bookings))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to replace bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "bookings replaced", "count", result.Count, "excluded", result.Excluded.Total())
	}()

	rows := make([]Booking, len(bookings))
	for i, b := range bookings {
		if strings.TrimSpace(b.ID) == "" {
			b.ID = s.idGenerator()
		}
		rows[i] = b
	}

	err = s.withStoreLock(ctx, func() error {
		return mapStoreError(s.store.SaveBookings(ctx, rows))
	})
	if err != nil {
		return
	}

	result.Count = len(rows)
	if s.catalog != nil {
		result.Excluded = scheduler.ProjectGrid(schedulerBookings(rows), s.catalog.Layout()).Excluded
	}
	return
}

// ImportBookings decodes a workbook and replaces the collection with its rows.
func (s *BookingService) ImportBookings(ctx context.Context, r io.Reader) (ImportResult, error) {
	if s == nil || s.spreadsheet == nil {
		return ImportResult{}, fmt.Errorf("spreadsheet codec not configured")
	}
	bookings, err := s.spreadsheet.DecodeBookings(r)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("file", err.Error())
		s.loggerWith(ctx, "ImportBookings").WarnContext(ctx, "workbook rejected", "error", err, "error_kind", ErrorKind(vErr))
		return ImportResult{}, vErr
	}
	return s.ReplaceBookings(ctx, bookings)
}

// ExportBookings writes the collection as a workbook. It returns ErrNotFound when
// there is nothing to export.
func (s *BookingService) ExportBookings(ctx context.Context, w io.Writer) error {
	if s == nil || s.spreadsheet == nil {
		return fmt.Errorf("spreadsheet codec not configured")
	}
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		return fmt.Errorf("%w: no bookings to export", ErrNotFound)
	}

	var buf bytes.Buffer
	if err := s.spreadsheet.EncodeBookings(&buf, bookings); err != nil {
		return fmt.Errorf("encode bookings: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Grid projects the stored bookings onto the catalog layout.
func (s *BookingService) Grid(ctx context.Context) (*scheduler.Grid, error) {
	if s == nil || s.catalog == nil {
		return nil, fmt.Errorf("catalog not configured")
	}
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	grid := scheduler.ProjectGrid(schedulerBookings(bookings), s.catalog.Layout())
	if excluded := grid.Excluded.Total(); excluded > 0 {
		s.loggerWith(ctx, "Grid").WarnContext(ctx, "bookings excluded from grid", "excluded", excluded, "reasons", grid.Excluded)
	}
	return grid, nil
}

// ExportGrid writes the projected grid as a workbook.
func (s *BookingService) ExportGrid(ctx context.Context, w io.Writer) error {
	if s == nil || s.spreadsheet == nil {
		return fmt.Errorf("spreadsheet codec not configured")
	}
	grid, err := s.Grid(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.spreadsheet.EncodeGrid(&buf, grid); err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// LiveStatus reports room usage at the current moment in the configured location.
// Weekdays without a catalog day name report every room available.
func (s *BookingService) LiveStatus(ctx context.Context) (scheduler.LiveStatus, error) {
	if s == nil || s.catalog == nil {
		return scheduler.LiveStatus{}, fmt.Errorf("catalog not configured")
	}
	now := s.now().In(s.location)
	day, _ := s.catalog.DayFor(now.Weekday())
	return s.LiveStatusAt(ctx, day, scheduler.NewClockTime(now.Hour(), now.Minute()))
}

// LiveStatusAt reports room usage on day at the given wall-clock time.
func (s *BookingService) LiveStatusAt(ctx context.Context, day string, at scheduler.ClockTime) (scheduler.LiveStatus, error) {
	if s == nil || s.catalog == nil {
		return scheduler.LiveStatus{}, fmt.Errorf("catalog not configured")
	}
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return scheduler.LiveStatus{}, err
	}
	status := scheduler.ComputeLiveStatus(schedulerBookings(bookings), s.catalog.Rooms(), day, at)
	s.loggerWith(ctx, "LiveStatus", "day", status.Day, "time", at.String()).DebugContext(ctx, "live status computed",
		"occupied", status.Occupied, "maintenance", status.Maintenance, "available", status.Available)
	return status, nil
}

// withStoreLock runs fn while holding the collection lock, retrying acquisition with
// exponential backoff.
func (s *BookingService) withStoreLock(ctx context.Context, fn func() error) error {
	if s.locker == nil {
		return fn()
	}

	var token string
	delay := s.retry.InitialDelay
	for attempt := 1; ; attempt++ {
		held, ok, err := s.locker.Lock(ctx, storeLockKey, s.lockTTL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", ErrStoreBusy, ctxErr)
			}
			return fmt.Errorf("acquire store lock: %w", err)
		}
		if ok {
			token = held
			break
		}
		if attempt >= s.retry.Attempts {
			return fmt.Errorf("%w: lock not acquired after %d attempts", ErrStoreBusy, attempt)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrStoreBusy, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
		if s.retry.MaxDelay > 0 && delay > s.retry.MaxDelay {
			delay = s.retry.MaxDelay
		}
	}

	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), storeLockKey, token); err != nil {
			s.loggerWith(ctx, "withStoreLock").WarnContext(ctx, "failed to release store lock", "error", err)
		}
	}()
	return fn()
}

func normalizeBookingInput(input BookingInput) BookingInput {
	return BookingInput{
		Instructor: strings.TrimSpace(input.Instructor),
		CourseName: strings.TrimSpace(input.CourseName),
		Credits:    strings.TrimSpace(input.Credits),
		Section:    strings.TrimSpace(input.Section),
		Day:        strings.TrimSpace(input.Day),
		StartTime:  strings.TrimSpace(input.StartTime),
		EndTime:    strings.TrimSpace(input.EndTime),
		Building:   strings.TrimSpace(input.Building),
		Floor:      strings.TrimSpace(input.Floor),
		Room:       strings.TrimSpace(input.Room),
		ClassType:  strings.TrimSpace(input.ClassType),
		Kind:       scheduler.Kind(strings.TrimSpace(string(input.Kind))),
	}
}

// validateBookingTimes checks the supplied times. Blank values pass and are excluded
// from projection later.
func validateBookingTimes(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	start, startErr := parseOptionalTime(input.StartTime)
	if startErr != nil {
		vErr.add("start_time", "start time must be HH:MM")
	}
	end, endErr := parseOptionalTime(input.EndTime)
	if endErr != nil {
		vErr.add("end_time", "end time must be HH:MM")
	}
	if startErr == nil && endErr == nil && input.StartTime != "" && input.EndTime != "" && start >= end {
		vErr.add("end_time", "end time must be after start time")
	}

	return vErr
}

func validateBookingKind(kind scheduler.Kind) *ValidationError {
	vErr := &ValidationError{}
	switch scheduler.Kind(strings.ToLower(string(kind))) {
	case "", scheduler.KindClass, scheduler.KindMaintenance:
	default:
		vErr.add("kind", "kind must be class or maintenance")
	}
	return vErr
}

func parseOptionalTime(value string) (scheduler.ClockTime, error) {
	if value == "" {
		return 0, nil
	}
	return scheduler.ParseClockTime(value)
}

func toConflictWarnings(conflicts []scheduler.Conflict) []ConflictWarning {
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]ConflictWarning, len(conflicts))
	for i, c := range conflicts {
		warnings[i] = ConflictWarning{
			BookingID: c.WithBookingID,
			Type:      string(c.Type),
			Room:      c.Room,
			Day:       c.Day,
			Start:     c.Overlap.Start.String(),
			End:       c.Overlap.End.String(),
		}
	}
	return warnings
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrBusy) {
		return fmt.Errorf("%w: %v", ErrStoreBusy, err)
	}
	return err
}
