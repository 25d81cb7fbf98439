// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Auth      AuthConfig
	Cart      CartConfig
	Quotation QuotationConfig
	Enquiry   EnquiryConfig
	Events    EventsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is postgres, mysql or sqlite.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Override, when set, is passed to the driver unchanged (DATABASE_URL).
	Override string
}

// Migration modes for AppConfig.Migrations.
const (
	MigrateAuto = "auto"
	MigrateSQL  = "sql"
	MigrateOff  = "off"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations string
	Seed       bool
}

type AuthConfig struct {
	SessionSecret string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// Cart backends.
const (
	CartBackendDB   = "db"
	CartBackendFile = "file"
)

type CartConfig struct {
	Backend string
	Dir     string
}

// QuotationConfig carries the single tax multiplier applied to every quotation.
type QuotationConfig struct {
	TaxRate      decimal.Decimal
	ValidityDays int
}

type EnquiryConfig struct {
	DailyCapacity int
}

// EventsConfig enables the RabbitMQ publisher when AMQPURL is set.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// DSN returns the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.Override != "" {
		return d.Override
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName)
	case "sqlite":
		return d.DBName
	default:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
		)
	}
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if d.Override != "" && strings.HasPrefix(d.Override, "postgres") {
		return d.Override
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "autoparts"),
			Password: getEnv("DB_PASSWORD", "autoparts123"),
			DBName:   getEnv("DB_NAME", "autoparts"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Override: os.Getenv("DATABASE_URL"),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvOneOf("MIGRATIONS", MigrateAuto, MigrateAuto, MigrateSQL, MigrateOff),
			Seed:       getEnvBool("SEED", true),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", "devsessionsecret"),
			TokenTTL:      time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@autoparts.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Cart: CartConfig{
			Backend: getEnvOneOf("CART_BACKEND", CartBackendDB, CartBackendDB, CartBackendFile),
			Dir:     getEnv("CART_DIR", "data/carts"),
		},
		Quotation: QuotationConfig{
			TaxRate:      getEnvDecimal("QUOTATION_TAX_RATE", decimal.RequireFromString("0.05")),
			ValidityDays: getEnvInt("QUOTATION_VALIDITY_DAYS", 30),
		},
		Enquiry: EnquiryConfig{
			DailyCapacity: getEnvInt("ENQUIRY_DAILY_CAPACITY", 5),
		},
		Events: EventsConfig{
			AMQPURL:  os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "autoparts.events"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDecimal parses a decimal; negative or malformed values fall back to the default.
func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil && !d.IsNegative() {
			return d
		}
	}
	return defaultValue
}

// getEnvOneOf returns the lower-cased value when it is one of allowed.
func getEnvOneOf(key, defaultValue string, allowed ...string) string {
	value := strings.ToLower(os.Getenv(key))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return defaultValue
}
