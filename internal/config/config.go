package config

import (
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	LogLevel    string
	StaticDir   string
	OAuthSecret string

	GeminiURL    string
	GeminiModel  string
	GeminiAPIKey string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "4000"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "finance_tracker"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		StaticDir:   getEnv("STATIC_DIR", "frontend/dist"),
		OAuthSecret: getEnv("OAUTH_TOKEN_SECRET", ""),

		GeminiURL:    getEnv("GEMINI_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", ""),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	return cfg, nil
}

// SMTPConfigured reports whether outgoing email is set up.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SenderEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
