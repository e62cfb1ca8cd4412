package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator(""),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BookingServiceDeps captures the collaborators a test wants to control. Unset
// clocks and identifiers fall back to the factory.
type BookingServiceDeps struct {
	Store       application.BookingStore
	Catalog     application.Catalog
	Locker      application.Locker
	Spreadsheet application.Spreadsheet
	Policy      *application.AdmissionPolicy
	IDGenerator func() string
	Now         func() time.Time
	Location    *time.Location
	Logger      *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults. The location defaults to UTC so results do
// not depend on the host time zone.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	policy := application.DefaultAdmissionPolicy()
	if deps.Policy != nil {
		policy = *deps.Policy
	}
	return application.NewBookingService(application.BookingServiceDeps{
		Store:       deps.Store,
		Catalog:     deps.Catalog,
		Locker:      deps.Locker,
		Spreadsheet: deps.Spreadsheet,
		Policy:      policy,
		IDGenerator: idGen,
		Now:         now,
		Location:    location,
		LockRetry:   application.LockRetry{Attempts: 5, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
		Logger:      deps.Logger,
	})
}
