// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // timezone resolution must not depend on the host zoneinfo

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultTimezone is the zone "today" is computed in when normalizing publish dates.
	DefaultTimezone = "Asia/Bangkok"

	// DefaultRateLimitRPS is the default sustained requests per second per client.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the default burst size per client.
	DefaultRateLimitBurst = 100

	// DefaultPostgresMaxConns is the default pgx pool size.
	DefaultPostgresMaxConns = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"        validate:"required"`
	Server    ServerConfig    `koanf:"server"     validate:"required"`
	Log       LogConfig       `koanf:"log"        validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Storage   StorageConfig   `koanf:"storage"    validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
	Timezone    string `koanf:"timezone"    validate:"required,timezone"`
}

// Location resolves the configured time zone. Validate guarantees it loads.
func (a AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig describes the identity headers set by the gateway in front of the service.
// When enabled, creating books requires WriteRole.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	SubjectHeader string `koanf:"subject_header" validate:"required_if=Enabled true"`
	RolesHeader   string `koanf:"roles_header"   validate:"required_if=Enabled true"`
	WriteRole     string `koanf:"write_role"     validate:"required_if=Enabled true"`
}

// RateLimitConfig contains the per-client token bucket settings.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"required_if=Enabled true,omitempty,gt=0"`
	Burst             int     `koanf:"burst"               validate:"required_if=Enabled true,omitempty,min=1"`
}

// StorageConfig selects and configures the book store. Only the selected
// driver's section is validated.
type StorageConfig struct {
	Driver   string         `koanf:"driver"   validate:"required,oneof=memory postgres redis"`
	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	DSN            string `koanf:"dsn"`
	MaxConns       int32  `koanf:"max_conns"        validate:"omitempty,min=1,max=1000"`
	MigrateOnStart bool   `koanf:"migrate_on_start"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"         validate:"min=0,max=15"`
	KeyPrefix string `koanf:"key_prefix"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "library-service",
		"app.version":     "dev",
		"app.environment": "local",
		"app.timezone":    DefaultTimezone,

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "15s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/library.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "library-service",
		"telemetry.sampling_rate": 1.0,

		"auth.enabled":        false,
		"auth.subject_header": "X-User-ID",
		"auth.roles_header":   "X-User-Roles",
		"auth.write_role":     "librarian",

		"rate_limit.enabled":             false,
		"rate_limit.requests_per_second": DefaultRateLimitRPS,
		"rate_limit.burst":               DefaultRateLimitBurst,

		"storage.driver":                    DriverMemory,
		"storage.postgres.dsn":              "",
		"storage.postgres.max_conns":        DefaultPostgresMaxConns,
		"storage.postgres.migrate_on_start": true,
		"storage.redis.addr":                "localhost:6379",
		"storage.redis.password":            "",
		"storage.redis.db":                  0,
		"storage.redis.key_prefix":          "library",
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", envKeyMapper(k.Keys())), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyMapper maps APP_SERVER_REQUEST_TIMEOUT to server.request_timeout by
// matching against the known keys, so keys containing underscores survive.
// Unknown variables fall back to replacing every underscore with a dot.
func envKeyMapper(keys []string) func(string) string {
	known := make(map[string]string, len(keys))
	for _, key := range keys {
		envName := strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		known[envName] = key
	}

	return func(s string) string {
		name := strings.TrimPrefix(s, "APP_")
		if key, ok := known[name]; ok {
			return key
		}
		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
