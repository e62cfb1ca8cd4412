package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-scheduler/internal/application"
	"github.com/example/room-scheduler/internal/catalog"
	"github.com/example/room-scheduler/internal/config"
	httptransport "github.com/example/room-scheduler/internal/http"
	"github.com/example/room-scheduler/internal/lock"
	"github.com/example/room-scheduler/internal/logging"
	"github.com/example/room-scheduler/internal/persistence"
	"github.com/example/room-scheduler/internal/persistence/memory"
	"github.com/example/room-scheduler/internal/persistence/postgres"
	"github.com/example/room-scheduler/internal/persistence/sqlite"
	"github.com/example/room-scheduler/internal/persistence/xlsxfile"
)

// bookingIDLength is the number of hex characters kept from a random UUID.
const bookingIDLength = 12

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Env, os.Stdout).With("env", cfg.Env)

	rooms, err := catalog.New(cfg.CatalogDefinition())
	if err != nil {
		logger.Error("invalid catalog", "error", err)
		os.Exit(1)
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", "error", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	store, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	locker, err := openLocker(ctx, cfg.Lock)
	if err != nil {
		logger.Error("failed to connect lock backend", "error", err, "redis_addr", cfg.Lock.RedisAddr)
		os.Exit(1)
	}
	defer func() {
		if cerr := locker.Close(); cerr != nil {
			logger.Error("failed to close lock backend", "error", cerr)
		}
	}()

	service := application.NewBookingService(application.BookingServiceDeps{
		Store:       newBookingStoreAdapter(store),
		Catalog:     rooms,
		Locker:      locker,
		Spreadsheet: spreadsheetAdapter{},
		Policy: application.AdmissionPolicy{
			ValidateTimes:  cfg.Admission.ValidateTimes,
			RejectOverlaps: cfg.Admission.RejectOverlaps,
		},
		IDGenerator: newBookingID,
		Now:         time.Now,
		Location:    location,
		LockTTL:     cfg.Lock.TTL,
		Logger:      logger,
	})

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings: httptransport.NewBookingHandler(service, logger, cfg.HTTP.MaxUploadBytes),
		Catalog:  httptransport.NewCatalogHandler(rooms, logger),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room scheduler listening",
		"addr", server.Addr,
		"driver", cfg.Storage.Driver,
		"timezone", location.String(),
		"rooms", len(rooms.Rooms()),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type closingRepository interface {
	persistence.BookingRepository
	Close() error
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (closingRepository, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN), logger)
	case config.DriverPostgres:
		return postgres.Open(ctx, postgres.Config{
			DSN:             cfg.PostgresDSN,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		}, logger)
	case config.DriverXLSX:
		return xlsxfile.Open(cfg.XLSXPath)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type closingLocker interface {
	lock.Locker
	Close() error
}

type localLocker struct {
	*lock.Local
}

func (localLocker) Close() error { return nil }

func openLocker(ctx context.Context, cfg config.LockConfig) (closingLocker, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return localLocker{lock.NewLocal()}, nil
	}
	return lock.NewRedis(ctx, cfg.RedisAddr)
}

func newBookingID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:bookingIDLength]
}
