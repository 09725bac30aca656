package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseType string

const (
	MySQL    DatabaseType = "mysql"
	SQLite   DatabaseType = "sqlite"
	Postgres DatabaseType = "postgres"
	MongoDB  DatabaseType = "mongodb"
)

// PoolMode selects between a bounded connection pool and a single shared connection
type PoolMode string

const (
	PoolModePool   PoolMode = "pool"
	PoolModeSingle PoolMode = "single"
)

const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"

	SessionStoreMemory = "memory"
	SessionStoreCookie = "cookie"

	PasswordPlaintext = "plaintext"
	PasswordBcrypt    = "bcrypt"
)

type Config struct {
	Host string
	Port string

	DatabaseType DatabaseType
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string
	DatabaseName string
	// SQLite config
	SQLitePath string
	// MongoDB config
	MongoURI string

	PoolMode PoolMode
	PoolSize int

	// RetryMax of 0 retries forever
	RetryMax      int
	RetryDelay    time.Duration
	RetryBackoff  string
	RetryMaxDelay time.Duration

	SessionSecret string
	SessionStore  string
	SessionSecure bool

	PasswordScheme string

	LogLevel    string
	Environment string
}

// LoadConfig reads the optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		DatabaseType:   DatabaseType(getEnv("DATABASE_TYPE", string(MySQL))),
		DBHost:         getEnv("DB_HOST", "mysql"),
		DBUser:         getEnv("DB_USER", "root"),
		DBPassword:     getEnv("DB_PASSWORD", "root123"),
		DatabaseName:   getEnv("DB_NAME", "testdb"),
		PoolMode:       PoolMode(getEnv("DB_POOL_MODE", string(PoolModePool))),
		RetryBackoff:   getEnv("DB_RETRY_BACKOFF", BackoffConstant),
		SessionSecret:  getEnv("SESSION_SECRET", "banksecret"),
		SessionStore:   getEnv("SESSION_STORE", SessionStoreMemory),
		PasswordScheme: getEnv("PASSWORD_SCHEME", PasswordPlaintext),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "development"),
	}

	var err error
	if cfg.DBPort, err = getEnvAsInt("DB_PORT", defaultPort(cfg.DatabaseType)); err != nil {
		return nil, err
	}
	if cfg.PoolSize, err = getEnvAsInt("DB_POOL_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.RetryMax, err = getEnvAsInt("DB_RETRY_MAX", 10); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getEnvAsDuration("DB_RETRY_DELAY", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryMaxDelay, err = getEnvAsDuration("DB_RETRY_MAX_DELAY", time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionSecure, err = getEnvAsBool("SESSION_SECURE", false); err != nil {
		return nil, err
	}

	cfg.SQLitePath = getEnv("SQLITE_PATH", filepath.Join("data", fmt.Sprintf("%s.db", cfg.DatabaseName)))
	cfg.MongoURI = getEnv("MONGODB_URI", (&url.URL{
		Scheme: "mongodb",
		User:   url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:   net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort)),
	}).String())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and non-positive sizes
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case MySQL, SQLite, Postgres, MongoDB:
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE: %s", c.DatabaseType)
	}
	switch c.PoolMode {
	case PoolModePool, PoolModeSingle:
	default:
		return fmt.Errorf("unsupported DB_POOL_MODE: %s", c.PoolMode)
	}
	switch c.RetryBackoff {
	case BackoffConstant, BackoffExponential:
	default:
		return fmt.Errorf("unsupported DB_RETRY_BACKOFF: %s", c.RetryBackoff)
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreCookie:
	default:
		return fmt.Errorf("unsupported SESSION_STORE: %s", c.SessionStore)
	}
	switch c.PasswordScheme {
	case PasswordPlaintext, PasswordBcrypt:
	default:
		return fmt.Errorf("unsupported PASSWORD_SCHEME: %s", c.PasswordScheme)
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.PoolSize)
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("DB_RETRY_MAX must not be negative, got %d", c.RetryMax)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("DB_RETRY_DELAY must be positive, got %s", c.RetryDelay)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// MaxOpenConns is the database connection cap implied by the pool mode
func (c *Config) MaxOpenConns() int {
	if c.PoolMode == PoolModeSingle {
		return 1
	}
	return c.PoolSize
}

func defaultPort(dbType DatabaseType) int {
	switch dbType {
	case Postgres:
		return 5432
	case MongoDB:
		return 27017
	default:
		return 3306
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
