package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for brandlens-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, the cookie secret, the database password) must only come
// from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Session cookie configuration
	Session SessionConfig `yaml:"session"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Analysis configuration (LLM providers and limits)
	Analysis AnalysisConfig `yaml:"analysis"`

	// Email delivery configuration
	Email EmailConfig `yaml:"email"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT tokens are validated.
	// Set to false for local development without an identity provider.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	// Format: "issuer1=url1,issuer2=url2"
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr (not from config file).
	JWKSEndpoints map[string]string `yaml:"-"`
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	// CookieName is the name of the session cookie carrying the session id.
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"brandlens_session"`

	// Secret signs session cookies. Server fails to start without it.
	Secret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML

	// MaxAgeHours is how long a session cookie stays valid.
	MaxAgeHours int `yaml:"max_age_hours" env:"SESSION_MAX_AGE_HOURS" env-default:"720"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"brandlens"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"brandlens_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// AnalysisConfig holds LLM provider settings for the brand and GEO analyzers.
type AnalysisConfig struct {
	// OpenAIAPIKey authenticates against the OpenAI API.
	OpenAIAPIKey string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML

	// AnthropicAPIKey authenticates against the Anthropic API.
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML

	// DefaultModel is the model used for brand research prompts.
	DefaultModel string `yaml:"default_model" env:"ANALYSIS_DEFAULT_MODEL" env-default:"gpt-4o-mini"`

	// TestModelsStr is a comma-separated list of models queried during GEO
	// positioning tests.
	TestModelsStr string `yaml:"test_models" env:"ANALYSIS_TEST_MODELS" env-default:"gpt-4o-mini,claude-3-5-haiku-latest"`

	// TestModels is the parsed list from TestModelsStr (not from config file).
	TestModels []string `yaml:"-"`

	// MaxQueries caps how many search queries a GEO run tests.
	MaxQueries int `yaml:"max_queries" env:"ANALYSIS_MAX_QUERIES" env-default:"10"`

	// RequestTimeoutSeconds bounds a single LLM call.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"ANALYSIS_REQUEST_TIMEOUT_SECONDS" env-default:"120"`
}

// EmailConfig holds report email delivery settings.
type EmailConfig struct {
	// SendGridAPIKey authenticates against the SendGrid API. When empty,
	// report email delivery is disabled and send requests fail fast.
	SendGridAPIKey string `yaml:"-" env:"SENDGRID_API_KEY"` // Secret - not in YAML

	// FromAddress is the sender address on report emails.
	FromAddress string `yaml:"from_address" env:"EMAIL_FROM_ADDRESS" env-default:"reports@brandlens.ai"`

	// FromName is the display name on report emails.
	FromName string `yaml:"from_name" env:"EMAIL_FROM_NAME" env-default:"BrandLens"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	c.Auth.JWKSEndpoints = parseJWKSEndpoints(c.Auth.JWKSEndpointsStr)
	c.Analysis.TestModels = splitAndTrim(c.Analysis.TestModelsStr)
	return nil
}

// parseJWKSEndpoints parses the JWKS endpoints string into a map.
// Format: "issuer1=url1,issuer2=url2"
func parseJWKSEndpoints(value string) map[string]string {
	endpoints := make(map[string]string)
	if value == "" {
		return endpoints
	}

	pairs := strings.Split(value, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, "=")
		if len(parts) == 2 {
			endpoints[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return endpoints
}

func splitAndTrim(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
