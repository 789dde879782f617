// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string
	ReadTimeout     int // seconds
	WriteTimeout    int // seconds
	IdleTimeout     int // seconds
	RequestTimeout  int // seconds, 0 disables the per-request deadline
	ShutdownTimeout int // seconds
}

// DatabaseConfig holds database connection settings.
// Driver is one of postgres, mysql or sqlite.
type DatabaseConfig struct {
	Driver   string
	DSN      string // overrides the discrete fields when set
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite file

	ConnectRetries int
	MaxOpenConns   int
	MaxIdleConns   int
	Debug          bool

	// TxAttempts bounds how many times a transaction is run when it fails
	// with a transient error.
	TxAttempts int
	TxBackoff  time.Duration
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev               bool
	Migrations        bool
	Seed              bool
	LogLevel          string
	LowStockThreshold int
}

// ConnString returns the connection string for the configured driver.
// An explicit DSN wins over the discrete fields.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "sqlite":
		return d.Path
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName)
	default:
		return d.KeyValue()
	}
}

// KeyValue returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) KeyValue() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	driver := strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	defaultPort := 5432
	if driver == "mysql" {
		defaultPort = 3306
	}
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			ReadTimeout:     getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:     getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			RequestTimeout:  getEnvInt("SERVER_REQUEST_TIMEOUT", 10),
			ShutdownTimeout: getEnvInt("SERVER_SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Driver:         driver,
			DSN:            strings.Trim(strings.TrimSpace(os.Getenv("DATABASE_DSN")), "\"'"),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", defaultPort),
			User:           getEnv("DB_USER", "pos"),
			Password:       getEnv("DB_PASSWORD", "pos123"),
			DBName:         getEnv("DB_NAME", "pos"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			Path:           getEnv("DB_PATH", "pos.db"),
			ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
			MaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:   getEnvInt("DB_MAX_IDLE_CONNS", 5),
			Debug:          getEnvBool("DB_DEBUG", false),
			TxAttempts:     getEnvInt("DB_TX_ATTEMPTS", 5),
			TxBackoff:      time.Duration(getEnvInt("DB_TX_BACKOFF_MS", 20)) * time.Millisecond,
		},
		App: AppConfig{
			Dev:               getEnvBool("DEV", true),
			Migrations:        getEnvBool("MIGRATIONS", true),
			Seed:              getEnvBool("DB_SEED", false),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 5),
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
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
