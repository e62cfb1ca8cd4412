// Package config loads process configuration from the environment, optionally
// overlaid on a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Jakarta must resolve on hosts without zoneinfo.

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/example/room-scheduler/internal/catalog"
)

// ConfigPathEnv names the optional YAML file read before environment variables.
const ConfigPathEnv = "ROOMSCHED_CONFIG_PATH"

// Environments accepted in ROOMSCHED_ENV.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Storage drivers accepted in ROOMSCHED_STORAGE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverXLSX     = "xlsx"
	DriverMemory   = "memory"
)

// Config captures configuration values for the room scheduler service.
type Config struct {
	Env       string          `yaml:"env" env:"ROOMSCHED_ENV" env-default:"prod"`
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Lock      LockConfig      `yaml:"lock"`
	Timezone  string          `yaml:"timezone" env:"ROOMSCHED_TIMEZONE" env-default:"Asia/Jakarta"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Admission AdmissionConfig `yaml:"admission"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Port            int           `yaml:"port" env:"ROOMSCHED_HTTP_PORT" env-default:"8080"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"ROOMSCHED_MAX_UPLOAD_BYTES" env-default:"10485760"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ROOMSCHED_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StorageConfig selects and configures the booking store.
type StorageConfig struct {
	Driver      string `yaml:"driver" env:"ROOMSCHED_STORAGE_DRIVER" env-default:"sqlite"`
	SQLiteDSN   string `yaml:"sqlite_dsn" env:"ROOMSCHED_SQLITE_DSN" env-default:"roomscheduler.db"`
	PostgresDSN string `yaml:"postgres_dsn" env:"ROOMSCHED_POSTGRES_DSN"`
	XLSXPath    string `yaml:"xlsx_path" env:"ROOMSCHED_XLSX_PATH" env-default:"uploads/jadwal.xlsx"`
}

// LockConfig configures write coordination. An empty RedisAddr selects the
// in-process lock.
type LockConfig struct {
	RedisAddr string        `yaml:"redis_addr" env:"ROOMSCHED_REDIS_ADDR"`
	TTL       time.Duration `yaml:"ttl" env:"ROOMSCHED_LOCK_TTL" env-default:"10s"`
}

// CatalogConfig overrides the built-in rooms, days and slots. Empty lists keep the
// defaults.
type CatalogConfig struct {
	Rooms      []string `yaml:"rooms" env:"ROOMSCHED_ROOMS" env-separator:","`
	Days       []string `yaml:"days" env:"ROOMSCHED_DAYS" env-separator:","`
	Slots      []string `yaml:"slots" env:"ROOMSCHED_SLOTS" env-separator:","`
	BreakSlots []string `yaml:"break_slots" env:"ROOMSCHED_BREAK_SLOTS" env-separator:","`
}

// AdmissionConfig mirrors application.AdmissionPolicy.
type AdmissionConfig struct {
	ValidateTimes  bool `yaml:"validate_times" env:"ROOMSCHED_VALIDATE_TIMES" env-default:"false"`
	RejectOverlaps bool `yaml:"reject_overlaps" env:"ROOMSCHED_REJECT_OVERLAPS" env-default:"false"`
}

// Load reads configuration from the YAML file named by ROOMSCHED_CONFIG_PATH, when
// set, and then from the environment. Every missing or invalid value is reported
// in a single error.
func Load() (Config, error) {
	var cfg Config

	if path := strings.TrimSpace(os.Getenv(ConfigPathEnv)); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		invalid = append(invalid, "ROOMSCHED_ENV")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		invalid = append(invalid, "ROOMSCHED_HTTP_PORT")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		invalid = append(invalid, "ROOMSCHED_MAX_UPLOAD_BYTES")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		invalid = append(invalid, "ROOMSCHED_SHUTDOWN_TIMEOUT")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLiteDSN) == "" {
			missing = append(missing, "ROOMSCHED_SQLITE_DSN")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			missing = append(missing, "ROOMSCHED_POSTGRES_DSN")
		}
	case DriverXLSX:
		if strings.TrimSpace(c.Storage.XLSXPath) == "" {
			missing = append(missing, "ROOMSCHED_XLSX_PATH")
		}
	case DriverMemory:
	default:
		invalid = append(invalid, "ROOMSCHED_STORAGE_DRIVER")
	}

	if c.Lock.TTL <= 0 {
		invalid = append(invalid, "ROOMSCHED_LOCK_TTL")
	}
	if _, err := c.Location(); err != nil {
		invalid = append(invalid, "ROOMSCHED_TIMEZONE")
	}

	var catalogErr error
	if _, catalogErr = catalog.New(c.CatalogDefinition()); catalogErr != nil {
		invalid = append(invalid, "ROOMSCHED_ROOMS/DAYS/SLOTS/BREAK_SLOTS")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		if catalogErr != nil {
			return fmt.Errorf("invalid configuration values: %s: %w", strings.Join(invalid, ", "), catalogErr)
		}
		return fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// CatalogDefinition returns the configured catalog, filling empty lists from the
// defaults. An explicit break list of "-" disables breaks.
func (c Config) CatalogDefinition() catalog.Definition {
	def := catalog.Default()
	if rooms := trimList(c.Catalog.Rooms); len(rooms) > 0 {
		def.Rooms = rooms
	}
	if days := trimList(c.Catalog.Days); len(days) > 0 {
		def.Days = days
	}
	if slots := trimList(c.Catalog.Slots); len(slots) > 0 {
		def.Slots = slots
		def.BreakSlots = nil
	}
	if breaks := trimList(c.Catalog.BreakSlots); len(breaks) > 0 {
		if len(breaks) == 1 && breaks[0] == "-" {
			breaks = nil
		}
		def.BreakSlots = breaks
	}
	return def
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
