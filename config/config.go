package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"govee-logger/internal/domain"
	"govee-logger/internal/infra/govee"
	"govee-logger/internal/infra/workbook"
)

const (
	DefaultEndpoint = govee.DefaultEndpoint
	DefaultTimezone = "America/Chicago"
)

type Config struct {
	Govee    GoveeConfig     `yaml:"govee"`
	Devices  []domain.Device `yaml:"devices"`
	Workbook WorkbookConfig  `yaml:"workbook"`
	Timezone string          `yaml:"timezone"`
	Metrics  MetricsConfig   `yaml:"metrics"`
	Pushover PushoverConfig  `yaml:"pushover"`
	Log      LogConfig       `yaml:"log"`
}

type GoveeConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
	Unit     string `yaml:"unit"`
}

type WorkbookConfig struct {
	Path     string `yaml:"path"`
	Sheet    string `yaml:"sheet"`
	Padding  *int   `yaml:"padding"` // nil when unset, 0 is a valid padding
	MaxWidth int    `yaml:"max_width"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConfigurationError is returned for missing or invalid settings. It is
// always reported before any network or file activity.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Load reads the YAML file at path and applies environment overrides and
// defaults. The result is not validated; call Validate once every override
// is in place.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("reading config file: %v", err)}
	}

	expanded := os.Expand(string(data), getenv)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("parsing config: %v", err)}
	}

	cfg.applyEnv(getenv)
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := firstEnv(getenv, "API_KEY", "GOVEE_API_KEY"); v != "" {
		c.Govee.APIKey = v
	}
	if v := firstEnv(getenv, "TEMP_UNIT", "GOVEE_TEMP_UNIT"); v != "" {
		c.Govee.Unit = v
	}
}

func (c *Config) setDefaults() {
	if c.Govee.Endpoint == "" {
		c.Govee.Endpoint = DefaultEndpoint
	}
	if c.Govee.Timeout == "" {
		c.Govee.Timeout = govee.DefaultTimeout.String()
	}
	if c.Govee.Unit == "" {
		c.Govee.Unit = string(domain.UnitFahrenheit)
	}
	if c.Workbook.Path == "" {
		c.Workbook.Path = "govee_temps.xlsx"
	}
	if c.Workbook.Sheet == "" {
		c.Workbook.Sheet = "readings"
	}
	if c.Workbook.Padding == nil {
		padding := workbook.DefaultPadding
		c.Workbook.Padding = &padding
	}
	if c.Workbook.MaxWidth == 0 {
		c.Workbook.MaxWidth = workbook.DefaultMaxWidth
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks every setting the run depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Govee.APIKey) == "" {
		return &ConfigurationError{Field: "govee.api_key", Reason: "not set (export API_KEY or GOVEE_API_KEY)"}
	}
	if _, err := c.Unit(); err != nil {
		return &ConfigurationError{Field: "govee.unit", Reason: err.Error()}
	}
	if _, err := c.RequestTimeout(); err != nil {
		return &ConfigurationError{Field: "govee.timeout", Reason: err.Error()}
	}
	if _, err := c.Location(); err != nil {
		return &ConfigurationError{Field: "timezone", Reason: err.Error()}
	}
	if len(c.Devices) == 0 {
		return &ConfigurationError{Field: "devices", Reason: "at least one device is required"}
	}
	for i, d := range c.Devices {
		if d.Name == "" || d.SKU == "" || d.ID == "" {
			return &ConfigurationError{
				Field:  fmt.Sprintf("devices[%d]", i),
				Reason: "name, sku and id are required",
			}
		}
	}
	if c.Workbook.Padding == nil || *c.Workbook.Padding < 0 || c.Workbook.MaxWidth <= 0 {
		return &ConfigurationError{Field: "workbook", Reason: "padding must be >= 0 and max_width > 0"}
	}
	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		return &ConfigurationError{Field: "pushover", Reason: "token and user_key are required when enabled"}
	}
	return nil
}

func (c *Config) Unit() (domain.Unit, error) {
	return domain.ParseUnit(c.Govee.Unit)
}

func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Govee.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func firstEnv(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
