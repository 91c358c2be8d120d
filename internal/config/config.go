package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	EngineID           string
	SimulationEnabled  bool
	EventCatalogStrict bool

	LeaderboardCacheTTLSeconds int
	EvaluatorHistoryWindow     int
	WalletAllowNegative        bool

	QueueCapacity       int
	ProcessorWorkers    int
	ProcessorMaxRetries int
	DeadLetterPath      string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "badgeforge"),

		EngineID:           getEnv("ENGINE_ID", "badgeforge"),
		SimulationEnabled:  getEnvBool("SIMULATION_ENABLED", false),
		EventCatalogStrict: getEnvBool("EVENT_CATALOG_STRICT", true),

		WalletAllowNegative: getEnvBool("WALLET_ALLOW_NEGATIVE", false),
		DeadLetterPath:      getEnv("DEAD_LETTER_PATH", "dead_letter_events.jsonl"),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.LeaderboardCacheTTLSeconds, err = getEnvInt("LEADERBOARD_CACHE_TTL_SECONDS", 60); err != nil {
		return nil, err
	}
	if cfg.EvaluatorHistoryWindow, err = getEnvInt("EVALUATOR_HISTORY_WINDOW", 1000); err != nil {
		return nil, err
	}
	if cfg.QueueCapacity, err = getEnvInt("QUEUE_CAPACITY", 1024); err != nil {
		return nil, err
	}
	if cfg.ProcessorWorkers, err = getEnvInt("PROCESSOR_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.ProcessorMaxRetries, err = getEnvInt("PROCESSOR_MAX_RETRIES", 3); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.LeaderboardCacheTTLSeconds <= 0 {
		return fmt.Errorf("LEADERBOARD_CACHE_TTL_SECONDS must be positive, got %d", c.LeaderboardCacheTTLSeconds)
	}
	if c.EvaluatorHistoryWindow <= 0 {
		return fmt.Errorf("EVALUATOR_HISTORY_WINDOW must be positive, got %d", c.EvaluatorHistoryWindow)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", c.QueueCapacity)
	}
	if c.ProcessorWorkers <= 0 {
		return fmt.Errorf("PROCESSOR_WORKERS must be positive, got %d", c.ProcessorWorkers)
	}
	if c.ProcessorMaxRetries < 0 {
		return fmt.Errorf("PROCESSOR_MAX_RETRIES must not be negative, got %d", c.ProcessorMaxRetries)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return parsed, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
