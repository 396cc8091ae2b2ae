package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	LogLevel string
	Database DatabaseConfig
	Cookie   CookieConfig
	Session  SessionConfig
	Registry ExternalConfig
	Address  ExternalConfig
	AI       AIExternalConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string // sqlite or mysql
	// sqlite
	Path string
	// mysql
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
	MaxAge   time.Duration
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	TTL time.Duration
}

// ExternalConfig holds a collaborator endpoint configuration
type ExternalConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AIExternalConfig holds the AI collaborator configuration
type AIExternalConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// AdminConfig holds the bootstrap admin account
type AdminConfig struct {
	ID       string
	Password string
	Name     string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: loadDatabaseConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Session: SessionConfig{
			TTL: getEnvDuration("SESSION_TTL_HOURS", 24) * time.Hour,
		},
		Registry: ExternalConfig{
			BaseURL: getEnv("REGISTRY_API_URL", ""),
			APIKey:  getEnv("REGISTRY_API_KEY", ""),
			Timeout: 5 * time.Second,
		},
		Address: ExternalConfig{
			BaseURL: getEnv("ADDRESS_API_URL", ""),
			APIKey:  getEnv("ADDRESS_API_KEY", ""),
			Timeout: 5 * time.Second,
		},
		AI: AIExternalConfig{
			BaseURL: getEnv("AI_API_URL", ""),
			APIKey:  getEnv("AI_API_KEY", ""),
			Model:   getEnv("AI_MODEL", ""),
			Timeout: 15 * time.Second,
		},
		Admin: AdminConfig{
			ID:       getEnv("ADMIN_ID", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
	}

	log.Printf("Configuration loaded [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Driver:   getEnv(prefix+"DB_DRIVER", "sqlite"),
		Path:     getEnv(prefix+"DB_PATH", "data/buildease.db"),
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "buildease"),
	}
}

// loadCookieConfig loads session cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))
	maxAgeDays, _ := strconv.Atoi(getEnv("COOKIE_MAX_AGE_DAYS", "7"))

	return CookieConfig{
		Name:     getEnv("COOKIE_NAME", "session_id"),
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "Lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
		MaxAge:   time.Duration(maxAgeDays) * 24 * time.Hour,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration reads an integer env var as a duration unit count
func getEnvDuration(key string, defaultValue int) time.Duration {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil || v <= 0 {
		v = defaultValue
	}
	return time.Duration(v)
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.buildease.io"
	}
	return origins
}
