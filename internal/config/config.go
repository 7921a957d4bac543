// Package config defines the application configuration, loaded once at
// process start from environment variables (with an optional YAML file).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// Service configuration
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"chat-gateway"`
	Version     string `env:"VERSION" yaml:"version" default:"dev"`
	Environment string `env:"ENVIRONMENT" yaml:"environment" default:"development"`

	// Server configuration
	Port           int           `env:"PORT" yaml:"port" default:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout" default:"60s"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" yaml:"read_timeout" default:"15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" yaml:"write_timeout" default:"75s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" yaml:"idle_timeout" default:"60s"`
	MaxRequestSize int64         `env:"MAX_REQUEST_SIZE" yaml:"max_request_size" default:"1048576"` // 1MB default

	// DebugResponse controls whether successful chat responses carry a debug
	// block echoing the resolved model, project, region and provider kind.
	DebugResponse bool `env:"DEBUG_RESPONSE" yaml:"debug_response" default:"true"`

	// Provider configuration
	Provider ProviderConfig `yaml:"provider,inline"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,inline"`

	// Security configuration
	Security SecurityConfig `yaml:"security,inline"`

	// Health check configuration
	Health HealthConfig `yaml:"health,inline"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics,inline"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" yaml:"level" default:"info"`
	Format string `env:"LOG_FORMAT" yaml:"format" default:"json"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	// CORSAllowedOrigin is the origin allowed to call the gateway from a
	// browser. "*" allows any origin.
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" yaml:"cors_allowed_origin" default:"*"`
}

// HealthConfig holds health check endpoint configuration
type HealthConfig struct {
	LivenessPath  string        `env:"HEALTH_LIVENESS_PATH" yaml:"liveness_path" default:"/health/live"`
	ReadinessPath string        `env:"HEALTH_READINESS_PATH" yaml:"readiness_path" default:"/health/ready"`
	Timeout       time.Duration `env:"HEALTH_TIMEOUT" yaml:"timeout" default:"5s"`
}

// MetricsConfig holds metrics collection and exposure settings
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" yaml:"enabled" default:"true"`
	Expose  bool `env:"METRICS_EXPOSE" yaml:"expose" default:"false"`
	Port    int  `env:"METRICS_PORT" yaml:"metrics_port" default:"9090"`
}

// Validate validates the configuration and returns an error if invalid.
// Provider-kind and per-variant requirements are checked when the provider is
// constructed, so a misspelled kind fails startup there rather than here.
func (c *AppConfig) Validate() error {
	var result error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		result = multierror.Append(result, fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		result = multierror.Append(result, fmt.Errorf("log_format must be either 'json' or 'text', got %q", c.Logging.Format))
	}

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}

	if c.Metrics.Expose && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		result = multierror.Append(result, fmt.Errorf("metrics_port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	if c.RequestTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("request_timeout must be greater than 0"))
	}

	if c.MaxRequestSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_request_size must be greater than 0"))
	}

	if c.Provider.Model == "" {
		result = multierror.Append(result, fmt.Errorf("model name must not be empty"))
	}

	return result
}

// GetLogLevel returns the parsed logger level
func (c *AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(c.Logging.Level)
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// LogConfig logs the current configuration (without sensitive data)
func (c *AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("version", c.Version),
		logger.StringField("environment", c.Environment),
		logger.IntField("port", c.Port),
		logger.StringField("provider_kind", c.Provider.Kind),
		logger.StringField("model", c.Provider.Model),
		logger.StringField("region", c.Provider.Region),
		logger.BoolField("project_configured", c.Provider.Project != ""),
		logger.BoolField("secret_ref_configured", c.Provider.SecretRef != ""),
		logger.StringField("log_level", c.Logging.Level),
		logger.StringField("cors_allowed_origin", c.Security.CORSAllowedOrigin),
		logger.BoolField("metrics_enabled", c.Metrics.Enabled),
		logger.BoolField("debug_response", c.DebugResponse),
	)
}
