package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Twilio TwilioConfig
	OpenAI OpenAIConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	WebhookPath  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// TwilioConfig holds messaging provider credentials and sender identity
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
}

// OpenAIConfig holds completion API configuration
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host:         getEnv("HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "8080"),
			WebhookPath:  getEnv("WEBHOOK_PATH", "/api/whatsapp"),
			ReadTimeout:  parseDuration(getEnv("SERVER_READ_TIMEOUT", "15s"), 15*time.Second),
			WriteTimeout: parseDuration(getEnv("SERVER_WRITE_TIMEOUT", "15s"), 15*time.Second),
			IdleTimeout:  parseDuration(getEnv("SERVER_IDLE_TIMEOUT", "60s"), 60*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID:     strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
			AuthToken:      strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
			WhatsAppNumber: strings.TrimSpace(os.Getenv("TWILIO_WHATSAPP_NUMBER")),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every required variable that is missing
func (c *Config) Validate() error {
	var missing []string
	if c.Twilio.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if c.Twilio.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.Twilio.WhatsAppNumber == "" {
		missing = append(missing, "TWILIO_WHATSAPP_NUMBER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(c.Server.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with '/': %q", c.Server.WebhookPath)
	}
	return nil
}

// Address returns the host:port the HTTP server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// parseDuration parses string to time.Duration with default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return defaultValue
	}
	return duration
}
