package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Gemini    GeminiConfig
	RiskAPI   RiskAPIConfig
	Pipeline  PipelineConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds the knowledge index configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// GeminiConfig holds completion service configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RiskAPIConfig holds the denial-risk scoring service configuration
type RiskAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig holds claim pipeline configuration
type PipelineConfig struct {
	// PayerName is the payer identity used when querying bundling and
	// modifier rules. The pipeline currently assumes a single payer per
	// deployment; multi-payer routing would need the payer on the request.
	PayerName string

	// RetrievalTopK is how many snippets each knowledge query returns.
	RetrievalTopK int

	// SnippetCacheTTLSeconds controls the read-through cache on knowledge
	// queries. Zero disables caching.
	SnippetCacheTTLSeconds int

	// ExternalRetries enables bounded retry with backoff on infrastructure
	// failures from the completion service and the knowledge index.
	// Malformed-content recovery inside the stages is unaffected.
	ExternalRetries bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "claimgen"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			Timeout: time.Duration(getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		RiskAPI: RiskAPIConfig{
			BaseURL: getEnv("RISK_API_URL", ""),
			Timeout: time.Duration(getEnvAsInt("RISK_API_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Pipeline: PipelineConfig{
			PayerName:              getEnv("PAYER_NAME", "Aetna"),
			RetrievalTopK:          getEnvAsInt("RETRIEVAL_TOP_K", 3),
			SnippetCacheTTLSeconds: getEnvAsInt("SNIPPET_CACHE_TTL_SECONDS", 0),
			ExternalRetries:        getEnvAsBool("EXTERNAL_RETRIES", false),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "claimgen"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
