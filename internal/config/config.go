package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string        `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURI           string        `env:"DATABASE_URI"`
	StorageDriver         string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	JWTSecret             string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTSecretFromFile     string        `env:"JWT_SECRET_FILE,file"`
	IdentityClientID      string        `env:"IDENTITY_CLIENT_ID" envDefault:"storefront"`
	EstimatedDeliveryDays int           `env:"ESTIMATED_DELIVERY_DAYS" envDefault:"5"`
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat             string        `env:"LOG_FORMAT" envDefault:"json"`
	OTLPEndpoint          string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName           string        `env:"SERVICE_NAME" envDefault:"orderengine"`
}

const (
	defaultRunAddress            = ":8080"
	defaultJWTSecret             = "change-me-in-production"
	defaultEstimatedDeliveryDays = 5
	defaultShutdownTimeout       = 10 * time.Second
)

// Load parses configuration from environment variables and flags.
func Load() (*Config, error) {
	return load(os.Args[1:], env.ToMap(os.Environ()))
}

func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if secret := strings.TrimSpace(cfg.JWTSecretFromFile); secret != "" {
		cfg.JWTSecret = secret
	}

	fs := flag.NewFlagSet("orderengine", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	shutdownTimeoutStr := cfg.ShutdownTimeout.String()

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Storage driver: postgres or memory")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for verifying identity tokens")
	fs.StringVar(&cfg.IdentityClientID, "client-id", cfg.IdentityClientID, "Client id holding per-client role claims")
	fs.IntVar(&cfg.EstimatedDeliveryDays, "delivery-days", cfg.EstimatedDeliveryDays, "Days from shipping to estimated delivery")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or text")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/HTTP traces endpoint")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.EstimatedDeliveryDays <= 0 {
		cfg.EstimatedDeliveryDays = defaultEstimatedDeliveryDays
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURI == "" {
			return nil, fmt.Errorf("database URI must be provided")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	// the built-in secret is only acceptable for throwaway in-memory runs
	if cfg.StorageDriver == StorageDriverPostgres && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("jwt secret must be configured for the postgres driver")
	}

	return cfg, nil
}
