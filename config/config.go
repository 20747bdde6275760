// Package config loads the engine's configuration from environment
// variables, with sensible defaults for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Engine
	Engine EngineConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL string

	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxConns      int32
	MinConns      int32
	TxMaxAttempts int
}

// RedisConfig holds Redis settings for the live game-log stream.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// EngineConfig holds engine tunables.
type EngineConfig struct {
	// GameLogBuffer is the async audit sink queue capacity.
	GameLogBuffer int

	// GameLogWriteTimeout bounds each audit write.
	GameLogWriteTimeout time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App = AppConfig{
		Name:        getEnv("APP_NAME", "heroforge-engine"),
		Environment: Environment(getEnv("APP_ENV", string(EnvDevelopment))),
		Debug:       getEnvBool("APP_DEBUG", false),
	}

	cfg.Database = DatabaseConfig{
		URL:           getEnv("DATABASE_URL", ""),
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          getEnvInt("DB_PORT", 5432),
		Name:          getEnv("DB_NAME", "heroforge"),
		User:          getEnv("DB_USER", "heroforge"),
		Password:      getEnv("DB_PASSWORD", ""),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		MaxConns:      int32(getEnvInt("DB_MAX_CONNS", 10)),
		MinConns:      int32(getEnvInt("DB_MIN_CONNS", 2)),
		TxMaxAttempts: getEnvInt("DB_TX_MAX_ATTEMPTS", 5),
	}
	if cfg.Database.URL == "" && cfg.Database.Password == "" && cfg.App.Environment == EnvProduction {
		return nil, fmt.Errorf("config: DATABASE_URL or DB_PASSWORD is required in production")
	}

	cfg.Redis = RedisConfig{
		Enabled:  getEnvBool("REDIS_ENABLED", false),
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Engine = EngineConfig{
		GameLogBuffer:       getEnvInt("GAMELOG_BUFFER", 256),
		GameLogWriteTimeout: getEnvDuration("GAMELOG_WRITE_TIMEOUT", 5*time.Second),
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
