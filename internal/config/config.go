package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissing is returned when a required variable is not set.
var ErrMissing = errors.New("required configuration missing")

// Ledger backends.
const (
	LedgerPostgres = "postgres"
	LedgerRedis    = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token signing parameters. Secret and both TTLs are required.
type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// LedgerConfig selects where session records live.
type LedgerConfig struct {
	Backend   string
	KeyPrefix string
}

// Load reads configuration from environment variables, applying defaults where possible.
// SECRET, ACCESS_TOKEN_EXP_SEC and REFRESH_TOKEN_EXP_DAY have no defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	auth, err := loadAuth()
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getEnv("LEDGER_BACKEND", LedgerPostgres))
	if backend != LedgerPostgres && backend != LedgerRedis {
		return nil, fmt.Errorf("invalid LEDGER_BACKEND %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "session-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("API_HOST", "0.0.0.0"),
			Port:                  getEnv("API_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("DATABASE_URL", os.Getenv("POSTGRES_DSN")),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: auth,
		Ledger: LedgerConfig{
			Backend:   backend,
			KeyPrefix: getEnv("LEDGER_REDIS_PREFIX", "sess"),
		},
	}

	return cfg, nil
}

func loadAuth() (AuthConfig, error) {
	secret := os.Getenv("SECRET")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("SECRET: %w", ErrMissing)
	}
	accessSec, err := requireInt("ACCESS_TOKEN_EXP_SEC")
	if err != nil {
		return AuthConfig{}, err
	}
	refreshDays, err := requireInt("REFRESH_TOKEN_EXP_DAY")
	if err != nil {
		return AuthConfig{}, err
	}
	return AuthConfig{
		Secret:     secret,
		AccessTTL:  time.Duration(accessSec) * time.Second,
		RefreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 12),
	}, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func requireInt(key string) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return 0, fmt.Errorf("%s: %w", key, ErrMissing)
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, parsed)
	}
	return parsed, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
