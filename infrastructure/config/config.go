package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Persistence backends
const (
	PersistenceMemory   = "memory"
	PersistenceDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion          string
	SessionsTable      string
	PersistenceBackend string
	EventBusName       string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// AI reasoning
	EnableAIReasoning bool
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	AITimeoutSeconds  int
	AITemperature     float64
	AIRequestsPerHour int

	// Sessions
	AutonomousMode bool

	// Logging
	LogLevel string

	// Feature flags
	EnableEventPublishing bool
	EnableMetrics         bool
	EnableTracing         bool
	EnableCORS            bool
	CORSAllowedOrigins    []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:      getEnv("SERVER_ADDRESS", ":8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		AWSRegion:          getEnv("AWS_REGION", "us-west-2"),
		SessionsTable:      getEnv("SESSIONS_TABLE", "archintel-sessions"),
		PersistenceBackend: getEnv("PERSISTENCE_BACKEND", PersistenceMemory),
		EventBusName:       getEnv("EVENT_BUS_NAME", "archintel-events"),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		// AI reasoning
		EnableAIReasoning: getEnvBool("ENABLE_AI_REASONING", false),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		AITimeoutSeconds:  getEnvInt("AI_TIMEOUT_SECONDS", 20),
		AITemperature:     getEnvFloat("AI_TEMPERATURE", 0.2),
		AIRequestsPerHour: getEnvInt("AI_REQUESTS_PER_HOUR", 30),

		AutonomousMode: getEnvBool("AUTONOMOUS_MODE", true),

		// Logging and features
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		EnableEventPublishing: getEnvBool("ENABLE_EVENT_PUBLISHING", false),
		EnableMetrics:         getEnvBool("ENABLE_METRICS", true),
		EnableTracing:         getEnvBool("ENABLE_TRACING", false),
		EnableCORS:            getEnvBool("ENABLE_CORS", true),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.PersistenceBackend {
	case PersistenceMemory:
	case PersistenceDynamoDB:
		if c.SessionsTable == "" {
			return fmt.Errorf("SESSIONS_TABLE is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("PERSISTENCE_BACKEND must be %q or %q, got %q",
			PersistenceMemory, PersistenceDynamoDB, c.PersistenceBackend)
	}

	if c.EnableEventPublishing && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when event publishing is enabled")
	}

	if c.EnableAIReasoning {
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI reasoning is enabled")
		}
		if c.AITimeoutSeconds <= 0 {
			return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive")
		}
		if c.AIRequestsPerHour <= 0 {
			return fmt.Errorf("AI_REQUESTS_PER_HOUR must be positive")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvList gets a comma separated environment variable with a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
