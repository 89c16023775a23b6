package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Wompi environments
const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

const (
	sandboxBaseURL    = "https://sandbox.wompi.co/v1"
	productionBaseURL = "https://production.wompi.co/v1"
	checkoutURL       = "https://checkout.wompi.co/p"
)

// Config holds all application configuration
type Config struct {
	Wompi   WompiConfig
	Secrets SecretsConfig
	Webhook WebhookConfig
	Logger  LoggerConfig
}

// WompiConfig holds gateway endpoints and credentials.
// Secrets may be empty here when they are resolved from a secrets backend.
type WompiConfig struct {
	Environment     string        // sandbox or production
	BaseURL         string        // REST API base, e.g. https://sandbox.wompi.co/v1
	CheckoutURL     string        // Web checkout base, e.g. https://checkout.wompi.co/p
	PublicKey       string        // pub_test_... / pub_prod_...
	PrivateKey      string        // prv_test_... / prv_prod_...
	IntegritySecret string        // signs checkout integrity signatures
	EventsSecret    string        // verifies webhook event checksums
	Timeout         time.Duration // HTTP timeout for API calls
}

// SecretsConfig selects where the integrity and events secrets come from
type SecretsConfig struct {
	Backend             string // env, local, aws, vault
	LocalPath           string
	AWSRegion           string
	AWSEndpoint         string
	VaultAddr           string
	VaultToken          string
	VaultMount          string
	IntegritySecretPath string
	EventsSecretPath    string
}

// WebhookConfig holds the event receiver and metrics listener settings
type WebhookConfig struct {
	Port        int
	RateLimit   float64 // requests per second per remote host
	Burst       int
	MetricsPort int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables, reading a .env
// file first when one exists. Variables already set take precedence.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	environment := getEnv("WOMPI_ENVIRONMENT", EnvironmentSandbox)
	defaultBaseURL := sandboxBaseURL
	if environment == EnvironmentProduction {
		defaultBaseURL = productionBaseURL
	}

	cfg := &Config{
		Wompi: WompiConfig{
			Environment:     environment,
			BaseURL:         getEnv("WOMPI_BASE_URL", defaultBaseURL),
			CheckoutURL:     getEnv("WOMPI_CHECKOUT_URL", checkoutURL),
			PublicKey:       getEnv("WOMPI_PUBLIC_KEY", ""),
			PrivateKey:      getEnv("WOMPI_PRIVATE_KEY", ""),
			IntegritySecret: getEnv("WOMPI_INTEGRITY_SECRET", ""),
			EventsSecret:    getEnv("WOMPI_EVENTS_SECRET", ""),
			Timeout:         getEnvAsDuration("WOMPI_TIMEOUT", 30*time.Second),
		},
		Secrets: SecretsConfig{
			Backend:             getEnv("SECRETS_BACKEND", "env"),
			LocalPath:           getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
			AWSEndpoint:         getEnv("AWS_ENDPOINT", ""),
			VaultAddr:           getEnv("VAULT_ADDR", "http://127.0.0.1:8200"),
			VaultToken:          getEnv("VAULT_TOKEN", ""),
			VaultMount:          getEnv("VAULT_MOUNT", "secret"),
			IntegritySecretPath: getEnv("WOMPI_INTEGRITY_SECRET_PATH", "WOMPI_INTEGRITY_SECRET"),
			EventsSecretPath:    getEnv("WOMPI_EVENTS_SECRET_PATH", "WOMPI_EVENTS_SECRET"),
		},
		Webhook: WebhookConfig{
			Port:        getEnvAsInt("WEBHOOK_PORT", 8080),
			RateLimit:   getEnvAsFloat("WEBHOOK_RATE_LIMIT", 10),
			Burst:       getEnvAsInt("WEBHOOK_BURST", 20),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that do not depend on which command runs
func (c *Config) Validate() error {
	switch c.Wompi.Environment {
	case EnvironmentSandbox, EnvironmentProduction:
	default:
		return fmt.Errorf("WOMPI_ENVIRONMENT must be %q or %q, got %q",
			EnvironmentSandbox, EnvironmentProduction, c.Wompi.Environment)
	}

	switch c.Secrets.Backend {
	case "env", "local", "aws", "vault":
	default:
		return fmt.Errorf("SECRETS_BACKEND must be one of env, local, aws, vault, got %q", c.Secrets.Backend)
	}

	if c.Wompi.Timeout <= 0 {
		return fmt.Errorf("WOMPI_TIMEOUT must be positive")
	}
	if c.Webhook.RateLimit <= 0 {
		return fmt.Errorf("WEBHOOK_RATE_LIMIT must be positive")
	}
	if c.Webhook.Burst < 1 {
		return fmt.Errorf("WEBHOOK_BURST must be at least 1")
	}

	return nil
}

// Helper functions

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("15s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
