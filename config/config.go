// Package config handles loading application configuration from environment variables.
// Values are read once at startup by the composition root and passed down explicitly;
// nothing in the application reads the environment after LoadConfig returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/blogivea-go/apperror"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It keeps local setups working
// but must never reach a deployment; main logs a warning when it is in effect.
const DefaultJWTSecret = "your_super_secret_key_here"

const defaultSummarizeURL = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

// DatabaseConfig holds the settings for the Postgres connection pool.
type DatabaseConfig struct {
	URL      string // full DSN; takes precedence over the discrete fields
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int
}

// DSN returns the connection string for pgxpool.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.DBName)
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
	BcryptCost    int
	// UsingDefaultSecret is true when JWT_SECRET was not provided.
	UsingDefaultSecret bool
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           string
	APIPrefix      string
	AllowedOrigins []string
}

// SummarizeConfig points at the external summarization model.
type SummarizeConfig struct {
	URL      string
	APIToken string
	Timeout  time.Duration
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string
	Pretty bool
}

// AppConfig aggregates all configuration sections.
type AppConfig struct {
	Database  *DatabaseConfig
	Auth      *AuthConfig
	Server    *ServerConfig
	Summarize *SummarizeConfig
	Log       *LogConfig
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s'", key, valueStr))
		return defaultValue
	}
	return v
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

func clampPoolSize(size int, errors *[]string) int {
	if size < 2 {
		*errors = append(*errors, fmt.Sprintf("DB_MAX_CONNS (%d) is less than minimum 2", size))
		return 2
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("DB_MAX_CONNS (%d) is greater than maximum 100", size))
		return 100
	}
	return size
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig reads the environment and returns the application configuration.
// All problems are collected and reported together.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	db := &DatabaseConfig{
		URL:      getOptionalEnv("DATABASE_URL", ""),
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
		User:     getOptionalEnv("DB_USER", ""),
		Password: getOptionalEnv("DB_PASSWORD", ""),
		DBName:   getOptionalEnv("DB_NAME", "blogivea"),
	}
	db.MaxConns = clampPoolSize(getOptionalEnvInt("DB_MAX_CONNS", 10, &errors), &errors)
	if db.URL == "" && db.User == "" {
		errors = append(errors, "missing required environment variable: DATABASE_URL (or DB_USER)")
	}

	secret, hasSecret := os.LookupEnv("JWT_SECRET")
	if secret == "" {
		secret = DefaultJWTSecret
		hasSecret = false
	}
	authCfg := &AuthConfig{
		JWTSecret:          secret,
		TokenDuration:      getOptionalEnvDuration("JWT_TTL", time.Hour, &errors),
		Issuer:             getOptionalEnv("JWT_ISSUER", "blogivea"),
		BcryptCost:         getOptionalEnvInt("BCRYPT_COST", bcrypt.DefaultCost, &errors),
		UsingDefaultSecret: !hasSecret,
	}
	if authCfg.BcryptCost < bcrypt.MinCost || authCfg.BcryptCost > bcrypt.MaxCost {
		errors = append(errors, fmt.Sprintf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, authCfg.BcryptCost))
	}
	if authCfg.TokenDuration <= 0 {
		errors = append(errors, "JWT_TTL must be positive")
	}

	serverCfg := &ServerConfig{
		Port:           getOptionalEnv("PORT", "3000"),
		APIPrefix:      "/" + strings.Trim(getOptionalEnv("API_PREFIX", "/api"), "/"),
		AllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
	if serverCfg.APIPrefix == "/" {
		serverCfg.APIPrefix = ""
	}

	summarizeCfg := &SummarizeConfig{
		URL:      getOptionalEnv("SUMMARIZE_URL", defaultSummarizeURL),
		APIToken: getOptionalEnv("HUGGINGFACE_API_TOKEN", ""),
		Timeout:  getOptionalEnvDuration("SUMMARIZE_TIMEOUT", 30*time.Second, &errors),
	}

	logCfg := &LogConfig{
		Level:  getOptionalEnv("LOG_LEVEL", "info"),
		Pretty: getOptionalEnvBool("LOG_PRETTY", false, &errors),
	}

	if len(errors) > 0 {
		return nil, apperror.NewConfigError(fmt.Sprintf("configuration errors:\n- %s", strings.Join(errors, "\n- ")), nil)
	}

	return &AppConfig{
		Database:  db,
		Auth:      authCfg,
		Server:    serverCfg,
		Summarize: summarizeCfg,
		Log:       logCfg,
	}, nil
}
