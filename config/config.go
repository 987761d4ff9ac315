package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"charityfund/models"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	HTTPAddr string

	// Broker configuration, an empty URL disables publishing
	AMQPURL      string
	AMQPExchange string

	// Allocation configuration
	AllocationMaxAttempts int                      // Total attempts per donation, the first try included
	BeneficiaryPolicy     models.BeneficiaryPolicy // Which beneficiaries share the general fund

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables, reading a .env file first if present
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// HTTP
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		// Broker
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "charityfund.allocations"),

		// Allocation defaults
		AllocationMaxAttempts: 5,
		BeneficiaryPolicy:     models.BeneficiaryPolicyAll,

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if attempts := os.Getenv("ALLOCATION_MAX_ATTEMPTS"); attempts != "" {
		parsed, err := strconv.Atoi(attempts)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("ALLOCATION_MAX_ATTEMPTS must be a positive integer, got %q", attempts)
		}
		config.AllocationMaxAttempts = parsed
	}

	if policy := os.Getenv("BENEFICIARY_POLICY"); policy != "" {
		switch p := models.BeneficiaryPolicy(strings.ToLower(strings.TrimSpace(policy))); p {
		case models.BeneficiaryPolicyAll, models.BeneficiaryPolicyUnfulfilled:
			config.BeneficiaryPolicy = p
		default:
			return nil, fmt.Errorf("BENEFICIARY_POLICY must be %q or %q, got %q",
				models.BeneficiaryPolicyAll, models.BeneficiaryPolicyUnfulfilled, policy)
		}
	}

	if config.LogFormat != "text" && config.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", config.LogFormat)
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
