package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ConsumeMode selects how the crafting transaction applies consumption when a
// component turns out to be short at apply time.
type ConsumeMode string

const (
	// ConsumeModeStrict validates the whole consumption plan before touching
	// the actor; a short component aborts with nothing spent.
	ConsumeModeStrict ConsumeMode = "strict"
	// ConsumeModeLegacy applies each component as it validates; a short
	// component aborts mid-way and earlier components stay consumed.
	ConsumeModeLegacy ConsumeMode = "legacy"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	ServiceName string
	Version     string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// QuantityPath is the attribute path under an item document where the
	// host system stores stack quantity (e.g. "quantity", "quantity.value").
	QuantityPath string

	// ConsumeMode picks strict-atomic or legacy-partial consumption.
	ConsumeMode ConsumeMode

	// SweepInterval is how often the delayed-craft sweep runs.
	SweepInterval time.Duration

	// DefaultCraftSound is the completion cue used when neither recipe nor
	// book set one.
	DefaultCraftSound string

	// ItemsFile is the JSON item catalogue backing the resolver directory.
	ItemsFile string

	APIKey string
	// TrustedProxies are proxy IPs whose X-Forwarded-For header is honoured.
	TrustedProxies []string

	LogDir string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		Environment:       getEnv("ENVIRONMENT", "dev"),
		ServiceName:       getEnv("SERVICE_NAME", "crucible"),
		Version:           getEnv("VERSION", "dev"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "crucible"),
		QuantityPath:      getEnv("QUANTITY_PATH", DefaultQuantityPath),
		DefaultCraftSound: getEnv("DEFAULT_CRAFT_SOUND", DefaultCraftSound),
		ItemsFile:         getEnv("ITEMS_FILE", "configs/items.json"),
		APIKey:            getEnv("API_KEY", ""),
		LogDir:            getEnv("LOG_DIR", "logs"),
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	mode := ConsumeMode(getEnv("CONSUME_MODE", string(ConsumeModeStrict)))
	if mode != ConsumeModeStrict && mode != ConsumeModeLegacy {
		return nil, fmt.Errorf("invalid CONSUME_MODE value: %q (want strict or legacy)", mode)
	}
	cfg.ConsumeMode = mode

	sweepStr := getEnv("SWEEP_INTERVAL_SECONDS", "30")
	sweepSecs, err := strconv.Atoi(sweepStr)
	if err != nil || sweepSecs <= 0 {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_SECONDS value: %q", sweepStr)
	}
	cfg.SweepInterval = time.Duration(sweepSecs) * time.Second

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
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
