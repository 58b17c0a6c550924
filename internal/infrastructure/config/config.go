package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic ThinQ Bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	ThinQ   ThinQConfig   `yaml:"thinq"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
}

// BridgeConfig contains bridge-level settings.
type BridgeConfig struct {
	// ID is the bridge identifier used in health and discovery messages.
	ID string `yaml:"id"`

	// PollIntervalSeconds is how often appliance state is refreshed.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// HealthIntervalSeconds is how often health status is published.
	HealthIntervalSeconds int `yaml:"health_interval_seconds"`

	// CommandTimeoutSeconds bounds a single command round trip to the API.
	CommandTimeoutSeconds int `yaml:"command_timeout_seconds"`
}

// ThinQConfig contains LG ThinQ API connection settings.
type ThinQConfig struct {
	// BaseURL is the ThinQ Connect API endpoint.
	BaseURL string `yaml:"base_url"`

	// Token is the personal access token for the ThinQ account.
	// Set via GRAYLOGIC_THINQ_TOKEN in production.
	Token string `yaml:"token"`

	// Country is the ISO 3166-1 country code sent with each request.
	Country string `yaml:"country"`

	// Language is the IETF language tag sent with each request.
	Language string `yaml:"language"`

	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
// For example: GRAYLOGIC_THINQ_TOKEN, GRAYLOGIC_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID:                    "thinq",
			PollIntervalSeconds:   30,
			HealthIntervalSeconds: 30,
			CommandTimeoutSeconds: 10,
		},
		ThinQ: ThinQConfig{
			BaseURL:        "https://api-aic.lgthinq.com",
			Country:        "US",
			Language:       "en-US",
			TimeoutSeconds: 15,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-thinq-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8086,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// ThinQ
	if v := os.Getenv("GRAYLOGIC_THINQ_TOKEN"); v != "" {
		cfg.ThinQ.Token = v
	}
	if v := os.Getenv("GRAYLOGIC_THINQ_BASE_URL"); v != "" {
		cfg.ThinQ.BaseURL = v
	}
	if v := os.Getenv("GRAYLOGIC_THINQ_COUNTRY"); v != "" {
		cfg.ThinQ.Country = v
	}

	// MQTT
	if v := os.Getenv("GRAYLOGIC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("GRAYLOGIC_API_HOST"); v != "" {
		cfg.API.Host = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Bridge validation
	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}
	if c.Bridge.PollIntervalSeconds < 1 {
		errs = append(errs, "bridge.poll_interval_seconds must be at least 1")
	}

	// ThinQ validation - the token is the sole credential for the vendor
	// account, so refuse to start without one rather than failing on the
	// first API call.
	if c.ThinQ.Token == "" {
		errs = append(errs, "thinq.token is required (set GRAYLOGIC_THINQ_TOKEN environment variable)")
	}
	if c.ThinQ.BaseURL == "" {
		errs = append(errs, "thinq.base_url is required")
	}
	if !strings.HasPrefix(c.ThinQ.BaseURL, "http://") && !strings.HasPrefix(c.ThinQ.BaseURL, "https://") {
		errs = append(errs, "thinq.base_url must be an http(s) URL")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetPollInterval returns the appliance poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Bridge.PollIntervalSeconds) * time.Second
}

// GetHealthInterval returns the health publish interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Bridge.HealthIntervalSeconds) * time.Second
}

// GetCommandTimeout returns the command timeout as a Duration.
func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Bridge.CommandTimeoutSeconds) * time.Second
}

// GetThinQTimeout returns the ThinQ HTTP request timeout as a Duration.
func (c *Config) GetThinQTimeout() time.Duration {
	return time.Duration(c.ThinQ.TimeoutSeconds) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
