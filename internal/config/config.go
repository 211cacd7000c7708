package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env      string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig

	// SessionIdleTimeout invalidates a session when no heartbeat arrived within it.
	SessionIdleTimeout time.Duration
	Location           *time.Location
	LowStockThreshold  int
	LogFile            string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
}

// Load reads .env (when present) into the process environment and builds the config from it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function. Unset keys fall back to defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Env:     strings.ToLower(get("APP_ENV", EnvDevelopment)),
		Port:    get("PORT", "3000"),
		LogFile: get("LOG_FILE", ""),
		Database: DatabaseConfig{
			URL:      get("DATABASE_URL", ""),
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "verokai_pos"),
			SSLMode:  get("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: get("JWT_SECRET", ""),
		},
		Admin: AdminConfig{
			Email:    get("ADMIN_EMAIL", "admin@verokai.local"),
			Password: get("ADMIN_PASSWORD", "admin123"),
		},
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("invalid APP_ENV %q: use %s or %s", cfg.Env, EnvDevelopment, EnvProduction)
	}

	var err error
	if cfg.Database.MaxOpenConns, err = positiveInt("DB_MAX_OPEN_CONNS", get("DB_MAX_OPEN_CONNS", "25")); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = positiveInt("DB_MAX_IDLE_CONNS", get("DB_MAX_IDLE_CONNS", "10")); err != nil {
		return nil, err
	}
	if cfg.LowStockThreshold, err = positiveInt("LOW_STOCK_THRESHOLD", get("LOW_STOCK_THRESHOLD", "5")); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = duration("DB_CONN_MAX_LIFETIME", get("DB_CONN_MAX_LIFETIME", "1h")); err != nil {
		return nil, err
	}
	if cfg.JWT.TTL, err = duration("JWT_TTL", get("JWT_TTL", "24h")); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTimeout, err = duration("SESSION_IDLE_TIMEOUT", get("SESSION_IDLE_TIMEOUT", "30m")); err != nil {
		return nil, err
	}

	tz := get("APP_TIMEZONE", "UTC")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}

	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWT.Secret = "verokai-dev-secret-change-me"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* keys.
func (d DatabaseConfig) DSN(loc *time.Location) string {
	if d.URL != "" {
		return d.URL
	}
	tz := "UTC"
	if loc != nil {
		tz = loc.String()
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, tz,
	)
}

func positiveInt(key, raw string) (int, error) {
	v, err := cast.ToIntE(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return v, nil
}

func duration(key, raw string) (time.Duration, error) {
	v, err := cast.ToDurationE(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration such as 30m or 24h", key, raw)
	}
	return v, nil
}
