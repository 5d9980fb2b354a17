// Package config provides runtime settings for the devw command using Viper
// for loading from an optional settings file, environment variables with the
// DWF_ prefix, and command-line flags.
//
// Settings only affect how devw runs (logging, project directory, watch
// debounce). The rules themselves live in the project's .dwf directory and are
// read by the rules package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/devworkflows/internal/logging"
)

// Keys under which settings are stored in viper.
const (
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyDir       = "dir"
	KeyDebounce  = "watch.debounce"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultDebounce  = 200 * time.Millisecond

	minDebounce = 10 * time.Millisecond
	maxDebounce = 10 * time.Second
)

type Settings struct {
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	Dir       string        `mapstructure:"dir"`
	Watch     WatchSettings `mapstructure:"watch"`
}

type WatchSettings struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)
	viper.SetDefault(KeyLogFormat, DefaultLogFormat)
	viper.SetDefault(KeyDir, ".")
	viper.SetDefault(KeyDebounce, DefaultDebounce)
}

func Load() (*Settings, error) {
	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Apply defaults for values viper left empty
	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}
	if settings.LogFormat == "" {
		settings.LogFormat = DefaultLogFormat
	}
	if settings.Dir == "" {
		settings.Dir = "."
	}
	if !viper.IsSet(KeyDebounce) {
		settings.Watch.Debounce = DefaultDebounce
	}

	if err := validateSettings(&settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &settings, nil
}

// validateSettings validates settings values
func validateSettings(settings *Settings) error {
	if _, err := logging.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if settings.LogFormat != "text" && settings.LogFormat != "json" {
		return fmt.Errorf("log_format %q must be text or json", settings.LogFormat)
	}

	if d := settings.Watch.Debounce; d < minDebounce || d > maxDebounce {
		return fmt.Errorf("watch.debounce %s is not in valid range %s-%s", d, minDebounce, maxDebounce)
	}

	info, err := os.Stat(settings.Dir)
	if err != nil {
		return fmt.Errorf("dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("dir %s is not a directory", settings.Dir)
	}

	return nil
}

// Root returns the absolute project directory.
func (s *Settings) Root() (string, error) {
	return filepath.Abs(s.Dir)
}

// LoggerConfig builds the logger configuration for these settings.
func (s *Settings) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(s.LogLevel); err == nil {
		cfg.Level = level
	}
	cfg.Format = s.LogFormat
	return cfg
}
