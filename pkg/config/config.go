// Package config loads application configuration from environment variables
// with sensible defaults, validating it once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskforge/taskforge/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	PingTimeout time.Duration
}

// AuthConfig holds authentication configuration.
//
// JWTSecret is process-wide and loaded exactly once; rotating it invalidates
// every previously issued token since there is no key versioning.
type AuthConfig struct {
	JWTSecret  string
	BcryptCost int
}

// ObservabilityConfig holds logging, metrics and tracing settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("TASKFORGE_HOST", "0.0.0.0"),
			Port:            getEnv("TASKFORGE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("TASKFORGE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("TASKFORGE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("TASKFORGE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("TASKFORGE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("TASKFORGE_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:         getEnv("TASKFORGE_POSTGRES_URL", ""),
			MaxConns:    getEnvInt("TASKFORGE_POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("TASKFORGE_POSTGRES_MIN_CONNS", 2),
			PingTimeout: getEnvDuration("TASKFORGE_POSTGRES_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("TASKFORGE_JWT_SECRET", ""),
			BcryptCost: getEnvInt("TASKFORGE_BCRYPT_COST", 10),
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.ParseLogLevel(getEnv("TASKFORGE_LOG_LEVEL", "info")),
			MetricsEnabled:     getEnvBool("TASKFORGE_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("TASKFORGE_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("TASKFORGE_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("TASKFORGE_OTEL_SERVICE_NAME", "taskforge"),
			OTelServiceVersion: getEnv("TASKFORGE_OTEL_SERVICE_VERSION", "1.0.0"),
			OTelInsecure:       getEnvBool("TASKFORGE_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required (TASKFORGE_POSTGRES_URL)")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT signing secret is required (TASKFORGE_JWT_SECRET)")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
