package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Fees     FeesConfig
	Tickets  TicketsConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
}

// FeesConfig is the authoritative platform fee schedule, keyed by
// payment provider. Historical code charged different rates in
// different paths; the schedule here is the single source of truth.
type FeesConfig struct {
	// Default schedule applied when the provider has no entry
	DefaultPercent   float64
	DefaultFlatCents int64
	// Per-provider overrides, e.g. "pesapal" or "paystack"
	Providers map[string]ProviderFee
}

type ProviderFee struct {
	Percent   float64
	FlatCents int64
}

type TicketsConfig struct {
	// Base URL embedded in QR payloads, e.g. https://tickets.example.com
	QRBaseURL string
	// Length of generated short ticket codes
	CodeLength int
}

// Load reads configuration from environment variables, loading .env
// first if present
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if it doesn't)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "boxoffice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Fees: FeesConfig{
			DefaultPercent:   getEnvFloat("FEE_PERCENT", 3.0),
			DefaultFlatCents: getEnvInt64("FEE_FLAT_CENTS", 0),
			Providers: map[string]ProviderFee{
				"pesapal":  {Percent: getEnvFloat("FEE_PESAPAL_PERCENT", 3.0)},
				"paystack": {Percent: getEnvFloat("FEE_PAYSTACK_PERCENT", 1.0), FlatCents: getEnvInt64("FEE_PAYSTACK_FLAT_CENTS", 0)},
			},
		},
		Tickets: TicketsConfig{
			QRBaseURL:  getEnv("QR_BASE_URL", "https://tickets.local"),
			CodeLength: getEnvInt("TICKET_CODE_LENGTH", 10),
		},
	}

	if cfg.Server.Env != "development" && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}

	return cfg, nil
}

// Fee resolves the fee schedule for a payment provider
func (f *FeesConfig) Fee(provider string) ProviderFee {
	if fee, ok := f.Providers[provider]; ok {
		return fee
	}
	return ProviderFee{Percent: f.DefaultPercent, FlatCents: f.DefaultFlatCents}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
