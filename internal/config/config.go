// Package config loads and validates the gateway configuration.
//
// DESIGN: All configuration comes from YAML. The binary embeds a default
// file; operators override it with --config. Credentials never live in YAML:
// providers name the environment variables that hold their keys.
//
// FILES:
//   - config.go:     Root Config struct, Load(), Validate()
//   - providers.go:  Provider specs and key resolution
//   - monitoring.go: Logging, telemetry and alert settings
//   - audit.go:      Audit store settings
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environments recognised by the gateway.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the root configuration for the gateway.
type Config struct {
	Environment string           `yaml:"environment"` // development, production, test
	Server      ServerConfig     `yaml:"server"`      // HTTP server settings
	Mock        MockConfig       `yaml:"mock"`        // Offline fallback
	Providers   []ProviderSpec   `yaml:"providers"`   // Fallback order
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`  // Per-client admission
	Audit       AuditConfig      `yaml:"audit"`       // Audit record store
	Monitoring  MonitoringConfig `yaml:"monitoring"`  // Telemetry and logging
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`           // Port to listen on
	ReadTimeout  time.Duration `yaml:"read_timeout"`   // Max time to read request
	WriteTimeout time.Duration `yaml:"write_timeout"`  // Max time to write response
	MaxBodyBytes int64         `yaml:"max_body_bytes"` // Request body cap (0 = 20MB)
}

// MockConfig controls the offline mock responder.
type MockConfig struct {
	Enabled bool `yaml:"enabled"` // Permit mock results outside development
}

// RateLimitConfig controls per-IP request admission.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables limiting
	Burst             int     `yaml:"burst"`
}

// MockAllowed reports whether the mock responder may answer when no
// provider succeeds.
func (c *Config) MockAllowed() bool {
	return c.Environment == EnvDevelopment || c.Mock.Enabled
}

// envVarPattern matches ${VAR:-default} or ${VAR}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults expands environment variables with support for default values.
// Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Load reads configuration from a YAML file.
// Returns an error if the file doesn't exist or is invalid.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes.
// Supports ${VAR:-default} env var expansion, env overrides, and validation.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
//   - APP_ENV:              environment
//   - AI_MOCK_ENABLED:      mock.enabled (strconv.ParseBool syntax)
//   - EDU_TELEMETRY_LOG:    monitoring.telemetry_path, enables telemetry
func (c *Config) applyEnvOverrides() {
	if env := strings.TrimSpace(os.Getenv("APP_ENV")); env != "" {
		c.Environment = env
	}

	if raw := os.Getenv("AI_MOCK_ENABLED"); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			c.Mock.Enabled = enabled
		}
	}

	if envPath := os.Getenv("EDU_TELEMETRY_LOG"); envPath != "" {
		c.Monitoring.TelemetryPath = envPath
		c.Monitoring.TelemetryEnabled = true
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	case "":
		return fmt.Errorf("environment is required")
	default:
		return fmt.Errorf("invalid environment %q (must be development, production or test)", c.Environment)
	}

	// Server validation
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ReadTimeout == 0 {
		return fmt.Errorf("server.read_timeout is required")
	}
	if c.Server.WriteTimeout == 0 {
		return fmt.Errorf("server.write_timeout is required")
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}

	if err := validateAudit(c.Audit); err != nil {
		return err
	}

	return c.ValidateProviders()
}
