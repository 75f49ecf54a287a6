package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Booking holds booking tunables.
type Booking struct {
	MaxTicketsPerOrder int `yaml:"max_tickets_per_order"`
}

// Journeys holds scheduling tunables.
type Journeys struct {
	// AllowPastDepartures disables the write-time departure floor. Meant
	// for seeding and test environments only.
	AllowPastDepartures bool `yaml:"allow_past_departures"`
}

// Log holds logging output settings.
type Log struct {
	Level      string `yaml:"level"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the application configuration. Environment variables provide
// the defaults; an optional YAML file named by TRAIN_STATION_CONFIG is
// merged on top.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	HTTPAddr    string `yaml:"http_addr"`
	JWTSecret   string `yaml:"jwt_secret"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Booking  Booking  `yaml:"booking"`
	Journeys Journeys `yaml:"journeys"`
	Log      Log      `yaml:"log"`
}

// Load builds the configuration from env and the optional YAML file.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Booking: Booking{
			MaxTicketsPerOrder: getenvIntDefault("MAX_TICKETS_PER_ORDER", 20),
		},
		Journeys: Journeys{
			AllowPastDepartures: getenvBoolDefault("ALLOW_PAST_DEPARTURES", false),
		},
		Log: Log{
			Level:      getenvDefault("LOG_LEVEL", "info"),
			FilePath:   os.Getenv("LOG_FILE"),
			MaxSizeMB:  getenvIntDefault("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getenvIntDefault("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getenvIntDefault("LOG_MAX_AGE_DAYS", 30),
		},
	}

	if path := os.Getenv("TRAIN_STATION_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: AUTH_JWT_SECRET is required")
	}
	if cfg.Booking.MaxTicketsPerOrder <= 0 {
		return cfg, errors.New("config: max_tickets_per_order must be positive")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
