package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Checkout CheckoutConfig
	Admin    AdminConfig
	TCG      TCGConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	CORSOrigins     []string
}

type StorageConfig struct {
	DatabaseURL string // empty selects the seeded in-memory catalogue
	RedisURL    string // empty selects in-process slot storage
	CartSlot    string // key prefix of the persisted cart slot
}

type CatalogConfig struct {
	// Fallback is "static" to serve the built-in product set when the
	// remote catalogue cannot be fetched, or "none".
	Fallback string
}

type CheckoutConfig struct {
	WhatsAppNumber string // country code + number, no plus sign or spaces
}

// AdminConfig carries the static owner credentials. They gate the admin
// views only and are not a security boundary.
type AdminConfig struct {
	Username string
	Password string
}

type TCGConfig struct {
	APIKey      string
	CatalogFile string // optional YAML endpoint catalogue
	Debounce    time.Duration
	Timeout     time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			CORSOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			DatabaseURL: getEnv("DATABASE_URL", ""),
			RedisURL:    getEnv("REDIS_URL", ""),
			CartSlot:    getEnv("CART_SLOT", "hobbyShopCart"),
		},
		Catalog: CatalogConfig{
			Fallback: getEnv("CATALOG_FALLBACK", "static"),
		},
		Checkout: CheckoutConfig{
			WhatsAppNumber: getEnv("WHATSAPP_NUMBER", "573236796356"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", "hobbyshop123"),
		},
		TCG: TCGConfig{
			APIKey:      getEnv("TCG_API_KEY", ""),
			CatalogFile: getEnv("TCG_CATALOG_FILE", ""),
			Debounce:    getEnvAsDuration("TCG_DEBOUNCE", 3*time.Second),
			Timeout:     getEnvAsDuration("TCG_TIMEOUT", 10*time.Second),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Storage.CartSlot == "" {
		return fmt.Errorf("CART_SLOT must not be empty")
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}

	switch c.Catalog.Fallback {
	case "static", "none":
	default:
		return fmt.Errorf("invalid catalog fallback: %s (must be static or none)", c.Catalog.Fallback)
	}

	if c.TCG.Debounce <= 0 {
		return fmt.Errorf("TCG_DEBOUNCE must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
