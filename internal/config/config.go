package config

import (
	"fmt"
	"time"

	"github.com/davidrmz/cotejo/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration
	ConsumerEnabled         bool

	// Analysis Engine
	EngineBaseURL string
	EngineAPIKey  string

	// JWT
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentAnalysis int

	// Pipeline
	AnalysisTimeout time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "analysis:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "analysis:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "analysis:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_HOURS", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour
	// API-only instances run with the consumer switched off
	cfg.ConsumerEnabled = env.GetEnvBool("STREAM_CONSUMER_ENABLED", true)

	// Analysis Engine
	cfg.EngineBaseURL = env.GetEnv("ENGINE_BASE_URL", "")
	cfg.EngineAPIKey = env.GetEnv("ENGINE_API_KEY", "")

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "cotejo")
	ttlHours := env.GetEnvInt("JWT_TTL_HOURS", 12)
	cfg.JWTTTL = time.Duration(ttlHours) * time.Hour

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentAnalysis = env.GetEnvInt("MAX_CONCURRENT_ANALYSIS", 5)

	// Pipeline
	timeoutMinutes := env.GetEnvInt("ANALYSIS_TIMEOUT_MINUTES", 10)
	cfg.AnalysisTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.EngineBaseURL == "" {
		return fmt.Errorf("ENGINE_BASE_URL is required")
	}
	if c.EngineAPIKey == "" {
		return fmt.Errorf("ENGINE_API_KEY is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentAnalysis <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_ANALYSIS must be greater than 0")
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_MINUTES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_HOURS must be greater than 0")
	}
	return nil
}
