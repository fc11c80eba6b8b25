package config

import (
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Booking  BookingConfig
	Gateway  GatewayConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// BookingConfig holds appointment business rules.
type BookingConfig struct {
	// DefaultAmountCents is charged when a booking request omits the amount.
	DefaultAmountCents int64
	// AllowCancelConfirmed permits cancelling an appointment the doctor has
	// already confirmed. Clinics with a strict policy can switch this off.
	AllowCancelConfirmed bool
}

// GatewayConfig tunes the sandbox payment gateway.
type GatewayConfig struct {
	DeclineRate float64 // probability an attempt is declined
	FeePercent  float64 // processing fee as percent of amount
	MinLatency  time.Duration
	MaxLatency  time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second, // payment simulation can take a few seconds
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "citamed:citamed@tcp(localhost:3306)/citamed?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "citamed",
		},
		Booking: BookingConfig{
			DefaultAmountCents:   50000,
			AllowCancelConfirmed: true,
		},
		Gateway: GatewayConfig{
			DeclineRate: 0.05,
			FeePercent:  2.9,
			MinLatency:  1 * time.Second,
			MaxLatency:  3 * time.Second,
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
