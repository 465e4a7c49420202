package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration loaded from YAML.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Session   SessionConfig   `yaml:"session"`
	Transport TransportConfig `yaml:"transport"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`

	// Operators may run privileged commands such as give.
	Operators []string `yaml:"operators"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

type SessionConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" validate:"gt=0"`
	BrewTicks    int           `yaml:"brew_ticks" validate:"gt=0"`
	MaxSessions  int           `yaml:"max_sessions" validate:"gte=0"`
}

type TransportConfig struct {
	// QueueSize bounds the frames buffered per websocket client.
	QueueSize      int           `yaml:"queue_size" validate:"gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ReadLimit      int64         `yaml:"read_limit" validate:"gt=0"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type AuditConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
	Topic        string        `yaml:"topic" validate:"required_if=Enabled true"`
	QueueSize    int           `yaml:"queue_size" validate:"gt=0"`
	BatchTimeout time.Duration `yaml:"batch_timeout" validate:"gte=0"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":25580",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Session: SessionConfig{
			TickInterval: 50 * time.Millisecond,
			BrewTicks:    400,
		},
		Transport: TransportConfig{
			QueueSize:    64,
			WriteTimeout: 5 * time.Second,
			ReadLimit:    4096,
		},
		Audit: AuditConfig{
			Topic:        "container-events",
			QueueSize:    1024,
			BatchTimeout: 100 * time.Millisecond,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
}

// IsOperator reports whether name is listed as an operator.
func (c *Config) IsOperator(name string) bool {
	for _, op := range c.Server.Operators {
		if strings.EqualFold(op, name) {
			return true
		}
	}
	return false
}
