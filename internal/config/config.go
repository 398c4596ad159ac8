// Package config loads the monitor configuration from an optional YAML file
// with MONITOR_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variable names recognized on top of the YAML file.
const (
	EnvPort        = "MONITOR_PORT"
	EnvProduction  = "MONITOR_PRODUCTION"
	EnvLogLevel    = "MONITOR_LOG_LEVEL"
	EnvLogFile     = "MONITOR_LOG_FILE"
	EnvPortForward = "MONITOR_PORT_FORWARD"
	EnvTray        = "MONITOR_TRAY"
)

// Duration wraps time.Duration so YAML values like "3s" parse directly.
type Duration time.Duration

// UnmarshalYAML accepts any time.ParseDuration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds everything the monitor reads at startup.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port" validate:"min=1,max=65535"`
	// Production enables release gin mode, JSON logs and error masking.
	Production bool `yaml:"production"`
	// LogLevel is the zerolog level name.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	// LogFile mirrors log output into a file when set.
	LogFile string `yaml:"log_file"`

	// UsageTTL is how long a usage snapshot stays fresh for readers.
	UsageTTL Duration `yaml:"usage_ttl" validate:"min=0"`
	// ProcessTTL is how long the process snapshot stays fresh for readers.
	ProcessTTL Duration `yaml:"process_ttl" validate:"min=0"`
	// RefreshInterval is the background warmer tick.
	RefreshInterval Duration `yaml:"refresh_interval" validate:"min=0"`
	// SampleInterval separates the two CPU tick snapshots of one sample.
	SampleInterval Duration `yaml:"sample_interval" validate:"min=0"`

	// RateLimitPerMinute caps API requests per client IP. 0 disables limiting.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" validate:"min=0"`
	// RateLimitBurst is the rate limiter burst size.
	RateLimitBurst int `yaml:"rate_limit_burst" validate:"min=0"`

	// PortForward keeps a UPnP/NAT-PMP mapping alive for the API port.
	PortForward bool `yaml:"port_forward"`
	// Tray shows the Windows system tray icon. Ignored elsewhere.
	Tray bool `yaml:"tray"`
}

// Defaults returns the configuration used when no file and no overrides exist.
func Defaults() *Config {
	return &Config{
		Port:               3000,
		LogLevel:           "info",
		UsageTTL:           Duration(3 * time.Second),
		ProcessTTL:         Duration(5 * time.Second),
		RefreshInterval:    Duration(4 * time.Second),
		SampleInterval:     Duration(time.Second),
		RateLimitPerMinute: 120,
		RateLimitBurst:     20,
	}
}

// Load reads the YAML file at path (a missing file is fine), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// defaults plus environment only
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port, ok := envInt(EnvPort); ok {
		c.Port = port
	}
	if prod, ok := envBool(EnvProduction); ok {
		c.Production = prod
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if file := os.Getenv(EnvLogFile); file != "" {
		c.LogFile = file
	}
	if pf, ok := envBool(EnvPortForward); ok {
		c.PortForward = pf
	}
	if tray, ok := envBool(EnvTray); ok {
		c.Tray = tray
	}
}

// Validate checks field constraints via validator tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var validate = validator.New()

func envBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return parsed, true
}

func envInt(key string) (int, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
