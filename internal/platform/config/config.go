package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverBadger   = "badger"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	LogLevel      slog.Level
	JWTSecret     string

	StoreDriver    string
	BadgerPath     string
	MigrationsPath string

	HNBBaseURL string
	HNBTimeout time.Duration

	SyncCron         string
	SyncTimezone     string
	SyncLocation     *time.Location
	SyncPollInterval time.Duration
	BackfillDays     int
	BackfillOnStart  bool

	KafkaBrokers []string
	KafkaTopic   string

	CORSAllowedOrigins []string
	RateLimit          string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("BADGER_PATH", "./data/badger")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("HNB_BASE_URL", "https://api.hnb.hr/tecajn-eur/v3")
	v.SetDefault("HNB_TIMEOUT", "15s")
	v.SetDefault("SYNC_CRON", "30 16 * * *")
	v.SetDefault("SYNC_TIMEZONE", "Local")
	v.SetDefault("SYNC_POLL_INTERVAL", "1m")
	v.SetDefault("BACKFILL_DAYS", 30)
	v.SetDefault("BACKFILL_ON_START", true)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "exchange-rates.synced")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT", "120-M")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		StoreDriver:        strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		BadgerPath:         v.GetString("BADGER_PATH"),
		MigrationsPath:     v.GetString("MIGRATIONS_PATH"),
		HNBBaseURL:         v.GetString("HNB_BASE_URL"),
		SyncCron:           strings.TrimSpace(v.GetString("SYNC_CRON")),
		SyncTimezone:       strings.TrimSpace(v.GetString("SYNC_TIMEZONE")),
		BackfillDays:       v.GetInt("BACKFILL_DAYS"),
		BackfillOnStart:    v.GetBool("BACKFILL_ON_START"),
		KafkaBrokers:       splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:         v.GetString("KAFKA_TOPIC"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimit:          strings.TrimSpace(v.GetString("RATE_LIMIT")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT environment variable not set. Defaulting to " + cfg.Port)
	}
	if cfg.JWTSecret == defaultJWTSecret {
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}

	var errs []error
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	var err error
	if cfg.HNBTimeout, err = parseDuration(v, "HNB_TIMEOUT"); err != nil {
		errs = append(errs, err)
	}
	if cfg.SyncPollInterval, err = parseDuration(v, "SYNC_POLL_INTERVAL"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the sync and storage settings and resolves SyncLocation.
func (c *Config) Validate() error {
	var errs []error

	if _, err := scheduler.ParseSpec(c.SyncCron); err != nil {
		errs = append(errs, fmt.Errorf("SYNC_CRON: %w", err))
	}

	loc, err := time.LoadLocation(c.SyncTimezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("SYNC_TIMEZONE %q: %w", c.SyncTimezone, err))
	} else {
		c.SyncLocation = loc
	}

	if c.HNBTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HNB_TIMEOUT must be positive, got %s", c.HNBTimeout))
	}
	if c.SyncPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("SYNC_POLL_INTERVAL must be positive, got %s", c.SyncPollInterval))
	}
	if c.BackfillDays < 0 {
		errs = append(errs, fmt.Errorf("BACKFILL_DAYS must not be negative, got %d", c.BackfillDays))
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("PGSQL_URL is required when STORE_DRIVER=postgres"))
		}
	case StoreDriverBadger:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverBadger, c.StoreDriver))
	}

	return errors.Join(errs...)
}

// KafkaEnabled reports whether sync events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
