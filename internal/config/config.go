package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/clock"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Shift    ShiftConfig
	Report   ReportConfig
	Redis    RedisConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string

	// AutoMigrate applies MigrationsDir on startup.
	AutoMigrate   bool
	MigrationsDir string
}

// ShiftConfig holds the warehouse shift boundary and the fallback timezone
// used when a warehouse row has none.
type ShiftConfig struct {
	Timezone       string
	DayStartHour   int
	NightStartHour int
}

type ReportConfig struct {
	PageSize int
	CacheTTL time.Duration
}

// CronConfig controls the shift rollup job. A zero interval disables it.
type CronConfig struct {
	RollupInterval time.Duration
}

// RedisConfig is optional; an empty URL disables report caching.
type RedisConfig struct {
	URL string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using environment only", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "robot_fleet"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:          appPort,
		Env:           getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
		AutoMigrate:   getEnvBool("AUTO_MIGRATE", false),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Shift configuration
	dayStart, err := getEnvInt("SHIFT_DAY_START_HOUR", 6)
	if err != nil {
		return nil, err
	}
	nightStart, err := getEnvInt("SHIFT_NIGHT_START_HOUR", 18)
	if err != nil {
		return nil, err
	}

	config.Shift = ShiftConfig{
		Timezone:       getEnv("SHIFT_TIMEZONE", "Europe/Warsaw"),
		DayStartHour:   dayStart,
		NightStartHour: nightStart,
	}

	// Report configuration
	pageSize, err := getEnvInt("REPORT_PAGE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("REPORT_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config.Report = ReportConfig{
		PageSize: pageSize,
		CacheTTL: cacheTTL,
	}

	config.Redis = RedisConfig{
		URL: getEnv("REDIS_URL", ""),
	}

	rollupInterval, err := getEnvDuration("SHIFT_ROLLUP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	config.Cron = CronConfig{
		RollupInterval: rollupInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := clock.LoadLocation(c.Shift.Timezone); err != nil {
		return fmt.Errorf("invalid SHIFT_TIMEZONE %q: %w", c.Shift.Timezone, err)
	}
	if c.Shift.DayStartHour < 0 || c.Shift.NightStartHour > 23 || c.Shift.DayStartHour >= c.Shift.NightStartHour {
		return fmt.Errorf("SHIFT_DAY_START_HOUR must be before SHIFT_NIGHT_START_HOUR, both within 0-23")
	}
	if c.Report.PageSize <= 0 {
		return fmt.Errorf("REPORT_PAGE_SIZE must be positive")
	}
	if c.Cron.RollupInterval < 0 {
		return fmt.Errorf("SHIFT_ROLLUP_INTERVAL must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value == "true" || value == "1"
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
