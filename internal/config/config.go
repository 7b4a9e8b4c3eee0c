package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub authentication; a GitHub App is preferred over a PAT for its higher rate limits
	AppID      string
	PrivateKey string
	PAT        string
	GitHubURL  string // optional REST base URL; GraphQL is derived from it

	// Organization
	OrgName     string
	OrgNickname string
	Exceptions  []string // repository full names known to be false positives

	// Search
	SearchWorkers int

	// Report
	ReportPath string

	// API Server
	APIPort        string
	APIHost        string
	AllowedOrigins []string // browser origins allowed to call the API

	// CLI
	APIEndpoint string
}

// Load loads the configuration from environment variables
func Load(files ...string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load(files...)

	return &Config{
		AppID:          getEnv("APP_ID", ""),
		PrivateKey:     getEnv("PRIVATE_KEY", ""),
		PAT:            getEnv("PAT", ""),
		GitHubURL:      getEnv("GITHUB_API_URL", ""),
		OrgName:        getEnv("ORG_NAME", ""),
		OrgNickname:    getEnv("ORG_NICKNAME", ""),
		Exceptions:     splitList(getEnv("EXCEPTIONS", "")),
		SearchWorkers:  getEnvInt("SEARCH_WORKERS", 1),
		ReportPath:     getEnv("REPORT_PATH", "LeakReport.html"),
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "localhost"),
		AllowedOrigins: splitList(getEnv("API_ALLOWED_ORIGINS", "")),
		APIEndpoint:    getEnv("API_ENDPOINT", "http://localhost:8080"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// AuthType reports which credential the configuration selects
func (c *Config) AuthType() string {
	if c.AppID != "" {
		return "app"
	}
	return "pat"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AppID == "" && c.PAT == "" {
		return &ConfigError{Field: "APP_ID/PAT", Message: "either a GitHub App or a personal access token is required"}
	}
	if c.AppID != "" && c.PrivateKey == "" {
		return &ConfigError{Field: "PRIVATE_KEY", Message: "private key is required when APP_ID is set"}
	}
	if c.OrgName == "" {
		return &ConfigError{Field: "ORG_NAME", Message: "organization name is required"}
	}
	if c.OrgNickname == "" {
		return &ConfigError{Field: "ORG_NICKNAME", Message: "organization nickname is required"}
	}
	if c.SearchWorkers < 1 {
		return &ConfigError{Field: "SEARCH_WORKERS", Message: "must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
