package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

// Config keeps runtime settings for the service.
type Config struct {
	StorageDriver  string
	Postgres       PostgresConfig
	SQLitePath     string
	MigrationsPath string

	RabbitMQURL string

	HTTPPort string
	GRPCPort string

	JWTSecret string

	SweepInterval   time.Duration
	SweepWorkers    int
	SweepBatchSize  int
	ShutdownTimeout time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns int32
	MinConns int32
}

// URL - строка подключения для pgx и migrate
func (c PostgresConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		StorageDriver: strings.ToLower(env("STORAGE_DRIVER", StoragePostgres)),
		Postgres: PostgresConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			User:     env("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   env("DB_NAME", "tasks"),
			SSLMode:  env("DB_SSLMODE", "disable"),
			MaxConns: int32(parseInt(os.Getenv("DB_MAX_CONNS"), 20)),
			MinConns: int32(parseInt(os.Getenv("DB_MIN_CONNS"), 2)),
		},
		SQLitePath:      env("SQLITE_PATH", "data/task_planner.db"),
		MigrationsPath:  env("MIGRATIONS_PATH", "file://migrations"),
		RabbitMQURL:     rabbitMQURL(),
		HTTPPort:        env("HTTP_PORT", "8080"),
		GRPCPort:        env("GRPC_PORT", "9090"),
		JWTSecret:       os.Getenv("JWT_SECRET_KEY"),
		SweepInterval:   parseDuration(os.Getenv("SWEEP_INTERVAL"), time.Minute),
		SweepWorkers:    parseInt(os.Getenv("SWEEP_WORKERS"), 4),
		SweepBatchSize:  parseInt(os.Getenv("SWEEP_BATCH_SIZE"), 100),
		ShutdownTimeout: parseDuration(os.Getenv("SHUTDOWN_TIMEOUT"), 10*time.Second),
	}

	switch cfg.StorageDriver {
	case StoragePostgres, StorageSQLite, StorageMemory:
	default:
		return cfg, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET_KEY is required")
	}

	return cfg, nil
}

// rabbitMQURL пустой, если RABBITMQ_HOST не задан: аудит тогда пишется прямо в хранилище
func rabbitMQURL() string {
	host := strings.TrimSpace(os.Getenv("RABBITMQ_HOST"))
	if host == "" {
		return ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		env("RABBITMQ_USER", "guest"),
		env("RABBITMQ_PASSWORD", "guest"),
		host,
		env("RABBITMQ_PORT", "5672"))
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
