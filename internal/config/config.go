package config

import (
	"fmt"
	"time"

	"github.com/eshoply/catalog-service/pkg/config"
	"github.com/eshoply/catalog-service/pkg/database"
)

// Config holds all catalog service configuration, loaded from environment
// variables.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8083"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"catalog"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"catalog_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"catalog_db"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	PostgresMaxConns        int32         `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	PostgresMinConns        int32         `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
	PostgresMaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"1h"`
	PostgresMaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"30m"`

	// PageSize fixes the number of results per listing page. It is a server
	// setting; clients cannot override it per request.
	PageSize int `env:"CATALOG_PAGE_SIZE" envDefault:"1"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaEnabled  bool     `env:"KAFKA_ENABLED" envDefault:"true"`
	OTLPEndpoint  string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceEnabled  bool     `env:"OTEL_TRACES_ENABLED" envDefault:"false"`
	TraceSampling float64  `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1.0"`

	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.Environment == "production" && c.JWTSecret == "dev-secret-change-me" {
		return fmt.Errorf("JWT_SECRET must be set explicitly in production")
	}
	return nil
}

// PostgresConfig builds the database pool configuration.
func (c *Config) PostgresConfig() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSLMode,
		MaxConns:        c.PostgresMaxConns,
		MinConns:        c.PostgresMinConns,
		MaxConnLifetime: c.PostgresMaxConnLifetime,
		MaxConnIdleTime: c.PostgresMaxConnIdleTime,
	}
}
