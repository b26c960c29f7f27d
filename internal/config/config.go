// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
)

// Config represents the application configuration
type Config struct {
	APIName        string `env:"BI_API_APP_NAME" default:"Bookinsights API"`
	APIVersion     string `env:"BI_API_APP_VERSION" default:"1.0.0"`
	ServerPort     string `env:"BI_API_SERVER_PORT" default:"3000"`
	ServerLogLevel string `env:"BI_API_SERVER_LOG_LEVEL" default:"info"`
	Environment    string `env:"BI_API_ENV" default:"local"`
	PostgresHost   string `env:"BI_API_PG_HOST"`
	PostgresUser   string `env:"BI_API_PG_USER"`
	PostgresPass   string `env:"BI_API_PG_PASS"`
	PostgresName   string `env:"BI_API_PG_NAME"`
	PostgresPort   string `env:"BI_API_PG_PORT" default:"5432"`
	RedisAddr      string `env:"BI_API_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `env:"BI_API_REDIS_PASSWORD" default:""`
	GeminiAPIKey   string `env:"BI_API_GEMINI_API_KEY"`
	GeminiBaseURL  string `env:"BI_API_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiModel    string `env:"BI_API_GEMINI_MODEL" default:"gemini-1.5-flash"`
	GeminiTimeout  string `env:"BI_API_GEMINI_TIMEOUT" default:"60s"`
	JWTSecret      string `env:"BI_API_JWT_SECRET"`
	TokenTTL       string `env:"BI_API_TOKEN_TTL" default:"1h"`
}

var (
	SingleLine string = "--------------------------------------------------"
)

var (
	instance *Config
	once     sync.Once
	err      error
)

// Get returns the application configuration
func Get() (*Config, error) {
	once.Do(func() {
		instance, err = loadConfig()
	})
	return instance, err
}

// loadConfig loads configuration from environment variables
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with the production
// environment flag, which tightens cookie attributes and requires TLS
// on the Postgres connection.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// loadFromEnv loads configuration from environment variables.
// Fields without a default tag are required.
func (c *Config) loadFromEnv() error {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(c).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			return fmt.Errorf("missing env tag for field %s", field.Name)
		}

		value := os.Getenv(envTag)
		if value == "" {
			defaultValue, hasDefault := field.Tag.Lookup("default")
			if !hasDefault {
				return fmt.Errorf("env variable %s is required but not set", envTag)
			}
			value = defaultValue
		}

		v.Field(i).SetString(value)
	}

	return nil
}

// String returns the configuration as a string
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n--------------------------------------\n")
	sb.WriteString("Configuration:\n")
	sb.WriteString("--------------------------------------\n")

	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i).String()

		// Mask sensitive fields
		value = maskSensitiveField(field.Name, value)
		sb.WriteString(fmt.Sprintf("  %s:  %s\n", field.Name, value))
	}

	sb.WriteString("--------------------------------------\n")

	return sb.String()
}

func maskSensitiveField(fieldName, value string) string {
	sensitiveFields := []string{"key", "secret", "password", "pass"}

	fieldNameLower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldNameLower, sensitive) {
			return maskValue(value)
		}
	}

	return value
}

func maskValue(value string) string {
	if len(value) <= 3 {
		return strings.Repeat("*", 7)
	}
	return value[:3] + strings.Repeat("*", 7)
}
