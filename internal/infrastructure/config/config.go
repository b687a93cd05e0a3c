package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for vizgate.
// It maps directly to the YAML configuration file structure.
type Config struct {
	Service      ServiceConfig      `yaml:"service"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Registration RegistrationConfig `yaml:"registration"`
	Mail         MailConfig         `yaml:"mail"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	API          APIConfig          `yaml:"api"`
	InfluxDB     InfluxDBConfig     `yaml:"influxdb"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServiceConfig identifies this instance in logs and events.
type ServiceConfig struct {
	Name string `yaml:"name" env:"VIZGATE_SERVICE_NAME"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path" env:"VIZGATE_DATABASE_PATH"`
	WALMode     bool   `yaml:"wal_mode" env:"VIZGATE_DATABASE_WAL_MODE"`
	BusyTimeout int    `yaml:"busy_timeout" env:"VIZGATE_DATABASE_BUSY_TIMEOUT"`

	// SchemaVersion is the meta-table version this deployment expects.
	// Empty means the version compiled into the binary.
	SchemaVersion string `yaml:"schema_version" env:"VIZGATE_DATABASE_SCHEMA_VERSION"`

	// IgnoreVersion starts the service even when the stored schema version
	// differs. Only for operators who know the schemas are compatible.
	IgnoreVersion bool `yaml:"ignore_version" env:"VIZGATE_DATABASE_IGNORE_VERSION"`
}

// StorageConfig locates the per-user data directories.
type StorageConfig struct {
	// UsersDataDir is the parent of userdata/<user>/<project>.
	UsersDataDir string `yaml:"users_data_dir" env:"VIZGATE_STORAGE_USERS_DATA_DIR"`
}

// RegistrationConfig controls how new accounts become accepted.
type RegistrationConfig struct {
	// AutoAccept confirms new accounts immediately when no mail server is
	// configured. Ignored when mail is enabled.
	AutoAccept bool `yaml:"auto_accept" env:"VIZGATE_REGISTRATION_AUTO_ACCEPT"`

	// BaseURL prefixes the confirmation link sent by mail.
	BaseURL string `yaml:"base_url" env:"VIZGATE_REGISTRATION_BASE_URL"`
}

// MailConfig contains outbound SMTP settings.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled" env:"VIZGATE_MAIL_ENABLED"`
	Host     string `yaml:"host" env:"VIZGATE_MAIL_HOST"`
	Port     int    `yaml:"port" env:"VIZGATE_MAIL_PORT"`
	Username string `yaml:"username" env:"VIZGATE_MAIL_USERNAME"`
	Password string `yaml:"password" env:"VIZGATE_MAIL_PASSWORD"`
	From     string `yaml:"from" env:"VIZGATE_MAIL_FROM"`

	// LogOnly writes messages to the log instead of sending them.
	LogOnly bool `yaml:"log_only" env:"VIZGATE_MAIL_LOG_ONLY"`
}

// MQTTConfig contains MQTT broker connection settings for account events.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled" env:"VIZGATE_MQTT_ENABLED"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos" env:"VIZGATE_MQTT_QOS"`
	TopicPrefix string              `yaml:"topic_prefix" env:"VIZGATE_MQTT_TOPIC_PREFIX"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host" env:"VIZGATE_MQTT_HOST"`
	Port     int    `yaml:"port" env:"VIZGATE_MQTT_PORT"`
	TLS      bool   `yaml:"tls" env:"VIZGATE_MQTT_TLS"`
	ClientID string `yaml:"client_id" env:"VIZGATE_MQTT_CLIENT_ID"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" env:"VIZGATE_MQTT_USERNAME"`
	Password string `yaml:"password" env:"VIZGATE_MQTT_PASSWORD"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host" env:"VIZGATE_API_HOST"`
	Port     int              `yaml:"port" env:"VIZGATE_API_PORT"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	Cookies  CookieConfig     `yaml:"cookies"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled" env:"VIZGATE_API_TLS_ENABLED"`
	CertFile string `yaml:"cert_file" env:"VIZGATE_API_TLS_CERT_FILE"`
	KeyFile  string `yaml:"key_file" env:"VIZGATE_API_TLS_KEY_FILE"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings. Responses
// allow credentials, so origins are listed explicitly; an empty list sends
// no CORS headers at all.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"VIZGATE_API_CORS_ALLOWED_ORIGINS"`
}

// CookieConfig names the two credential cookies.
type CookieConfig struct {
	Session string `yaml:"session"`
	View    string `yaml:"view"`
	Secure  bool   `yaml:"secure" env:"VIZGATE_API_COOKIES_SECURE"`
}

// InfluxDBConfig contains InfluxDB connection settings for access metrics.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" env:"VIZGATE_INFLUXDB_ENABLED"`
	URL           string `yaml:"url" env:"VIZGATE_INFLUXDB_URL"`
	Token         string `yaml:"token" env:"VIZGATE_INFLUXDB_TOKEN"`
	Org           string `yaml:"org" env:"VIZGATE_INFLUXDB_ORG"`
	Bucket        string `yaml:"bucket" env:"VIZGATE_INFLUXDB_BUCKET"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"VIZGATE_LOG_LEVEL"`
	Format string `yaml:"format" env:"VIZGATE_LOG_FORMAT"`
	Output string `yaml:"output" env:"VIZGATE_LOG_OUTPUT"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern VIZGATE_SECTION_KEY, for example
// VIZGATE_DATABASE_PATH or VIZGATE_MAIL_PASSWORD.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: "vizgate",
		},
		Database: DatabaseConfig{
			Path:        "./data/vizgate.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Storage: StorageConfig{
			UsersDataDir: "./data",
		},
		Registration: RegistrationConfig{
			BaseURL: "http://localhost:8080",
		},
		Mail: MailConfig{
			Port: 587,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "vizgate",
			},
			QoS:         1,
			TopicPrefix: "vizgate",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			Cookies: CookieConfig{
				Session: "session",
				View:    "view",
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies VIZGATE_* environment variables on top of the
// file values. Unset variables leave the field untouched.
func applyEnvOverrides(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Storage.UsersDataDir == "" {
		errs = append(errs, "storage.users_data_dir is required")
	}

	if c.Mail.Enabled && !c.Mail.LogOnly {
		if c.Mail.Host == "" {
			errs = append(errs, "mail.host is required when mail is enabled")
		}
		if c.Mail.Port < 1 || c.Mail.Port > 65535 {
			errs = append(errs, "mail.port must be between 1 and 65535")
		}
	}
	if c.Mail.Enabled && c.Mail.From == "" {
		errs = append(errs, "mail.from is required when mail is enabled")
	}
	if c.Mail.Enabled && c.Registration.BaseURL == "" {
		errs = append(errs, "registration.base_url is required when mail is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.Cookies.Session == "" || c.API.Cookies.View == "" {
		errs = append(errs, "api.cookies.session and api.cookies.view are required")
	}
	for _, origin := range c.API.CORS.AllowedOrigins {
		if origin == "*" {
			errs = append(errs, "api.cors.allowed_origins cannot contain \"*\" because sessions use cookies")
			break
		}
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// MailAvailable reports whether registration can hand confirmation codes
// to a mail collaborator.
func (c *Config) MailAvailable() bool {
	return c.Mail.Enabled
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
