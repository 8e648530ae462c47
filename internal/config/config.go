// Package config loads finsight configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/logger"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Pipeline
	PipelineAPIKey string

	// Analytics
	IncludePending bool
	MaxParallel    int
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	loadDotEnv()

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finsight"),
		DBPassword: getEnv("DB_PASSWORD", "finsight"),
		DBName:     getEnv("DB_NAME", "finsight"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:      getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		PipelineAPIKey: os.Getenv("PIPELINE_API_KEY"),
	}

	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		logger.Get().Warnf("invalid JWT_EXPIRES_IN value %q, falling back to 24h", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	config.IncludePending, err = parseBool(os.Getenv("ANALYTICS_INCLUDE_PENDING"), true)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_INCLUDE_PENDING value: %w", err)
	}

	config.MaxParallel, err = parsePositiveInt(os.Getenv("ANALYTICS_MAX_PARALLEL"), 4)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_MAX_PARALLEL value: %w", err)
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			logger.Get().Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// DSN returns the PostgreSQL connection string used by GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// MigrationURL returns the postgres:// URL used by golang-migrate.
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// SyncConfig holds the sync worker configuration.
type SyncConfig struct {
	APIURL         string
	PipelineAPIKey string
	BankAPIURL     string
	BankClientID   string
	BankSecret     string
	Institution    string
	LookbackDays   int
	RequestTimeout time.Duration
	Parallelism    int
	Env            string
}

// LoadSync reads the sync worker configuration and validates required fields.
func LoadSync() (*SyncConfig, error) {
	loadDotEnv()

	cfg := &SyncConfig{
		APIURL:         os.Getenv("FINSIGHT_API_URL"),
		PipelineAPIKey: os.Getenv("PIPELINE_API_KEY"),
		BankAPIURL:     os.Getenv("BANK_API_URL"),
		BankClientID:   os.Getenv("BANK_CLIENT_ID"),
		BankSecret:     os.Getenv("BANK_SECRET"),
		Institution:    os.Getenv("BANK_INSTITUTION"),
		Env:            getEnv("ENV", "development"),
	}

	required := map[string]string{
		"FINSIGHT_API_URL": cfg.APIURL,
		"PIPELINE_API_KEY": cfg.PipelineAPIKey,
		"BANK_API_URL":     cfg.BankAPIURL,
		"BANK_CLIENT_ID":   cfg.BankClientID,
		"BANK_SECRET":      cfg.BankSecret,
	}
	for _, key := range []string{"FINSIGHT_API_URL", "PIPELINE_API_KEY", "BANK_API_URL", "BANK_CLIENT_ID", "BANK_SECRET"} {
		if required[key] == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	var err error
	if cfg.LookbackDays, err = parsePositiveInt(os.Getenv("SYNC_LOOKBACK_DAYS"), 90); err != nil {
		return nil, fmt.Errorf("invalid SYNC_LOOKBACK_DAYS value: %w", err)
	}
	if cfg.RequestTimeout, err = parseTimeout(os.Getenv("REQUEST_TIMEOUT")); err != nil {
		return nil, err
	}
	if cfg.Parallelism, err = parsePositiveInt(os.Getenv("SYNC_PARALLELISM"), 4); err != nil {
		return nil, fmt.Errorf("invalid SYNC_PARALLELISM value: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug(".env file not found, using process environment")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}

func parseBool(s string, defaultVal bool) (bool, error) {
	if s == "" {
		return defaultVal, nil
	}
	switch strings.ToLower(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("must be true, false, 1, or 0, got %q", s)
	}
}

func parsePositiveInt(s string, defaultVal int) (int, error) {
	if s == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
