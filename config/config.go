// Package config loads the settings of the irr command and its HTTP server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the complete configuration.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Report   ReportConfig  `mapstructure:"report"`
	Assist   AssistConfig  `mapstructure:"assist"`
	Currency string        `mapstructure:"currency"` // default currency of amounts given without one
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// ReportConfig holds markdown report settings.
type ReportConfig struct {
	Monthly  bool `mapstructure:"monthly"`   // list every month of the growth trajectory, not only years
	WordWrap int  `mapstructure:"word_wrap"` // terminal width for rendered markdown
}

// AssistConfig holds the settings of the assistant.
type AssistConfig struct {
	Model string `mapstructure:"model"`
}

// Load reads the configuration from the optional file at path, and from IRR_ prefixed
// environment variables (e.g. IRR_SERVER_ADDR).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("IRR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration when no file and no environment is set.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// defaults always unmarshal.
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("report.monthly", false)
	v.SetDefault("report.word_wrap", 100)

	v.SetDefault("assist.model", "gemini-2.5-flash")

	v.SetDefault("currency", "")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if c.Server.MaxBodyBytes < 1024 {
		return errors.New("server.max_body_bytes must be at least 1024")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Report.WordWrap < 20 {
		return errors.New("report.word_wrap must be at least 20")
	}
	if c.Assist.Model == "" {
		return errors.New("assist.model is required")
	}
	if c.Currency != "" && len(c.Currency) != 3 {
		return fmt.Errorf("currency must be an ISO 4217 code, got %q", c.Currency)
	}
	return nil
}
