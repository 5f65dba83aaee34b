package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Chain configuration
	RPCURL         string // JSON-RPC endpoint of the test network
	FactoryAddress string // Group factory contract address
	ChainID        int64

	// Database configuration (sponsorship ledger)
	DatabaseURL string

	// Redis configuration (snapshot cache)
	RedisURL      string
	RedisPassword string
	CacheTTL      time.Duration

	// JWT configuration (session tokens minted by the wallet-auth flow)
	JWTSecret string

	// Relayer configuration
	RelayerQuotaPerHour int // Sponsored transactions allowed per address per hour
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		RPCURL:              getEnv("RPC_URL", ""),
		FactoryAddress:      getEnv("FACTORY_ADDRESS", ""),
		ChainID:             int64(getEnvAsInt("CHAIN_ID", 84532)), // Base Sepolia
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		CacheTTL:            getEnvAsDuration("CACHE_TTL", 60*time.Second),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		RelayerQuotaPerHour: getEnvAsInt("RELAYER_QUOTA_PER_HOUR", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}

	if c.FactoryAddress == "" {
		return fmt.Errorf("FACTORY_ADDRESS is required")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.RelayerQuotaPerHour <= 0 {
		return fmt.Errorf("RELAYER_QUOTA_PER_HOUR must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
