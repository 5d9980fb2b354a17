package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/devworkflows/internal/logging"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, s *Settings)
	}{
		{
			name: "defaults",
			setup: func() {
				viper.Reset()
				SetDefaults()
			},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "info", s.LogLevel)
				assert.Equal(t, "text", s.LogFormat)
				assert.Equal(t, ".", s.Dir)
				assert.Equal(t, 200*time.Millisecond, s.Watch.Debounce)
			},
		},
		{
			name: "defaults without registration",
			setup: func() {
				viper.Reset()
			},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, DefaultLogLevel, s.LogLevel)
				assert.Equal(t, DefaultDebounce, s.Watch.Debounce)
			},
		},
		{
			name: "overrides",
			setup: func() {
				viper.Reset()
				SetDefaults()
				viper.Set(KeyLogLevel, "debug")
				viper.Set(KeyLogFormat, "json")
				viper.Set(KeyDir, dir)
				viper.Set(KeyDebounce, "50ms")
			},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "debug", s.LogLevel)
				assert.Equal(t, "json", s.LogFormat)
				assert.Equal(t, dir, s.Dir)
				assert.Equal(t, 50*time.Millisecond, s.Watch.Debounce)
			},
		},
		{
			name: "invalid log level",
			setup: func() {
				viper.Reset()
				SetDefaults()
				viper.Set(KeyLogLevel, "verbose")
			},
			expectError: true,
		},
		{
			name: "invalid log format",
			setup: func() {
				viper.Reset()
				SetDefaults()
				viper.Set(KeyLogFormat, "xml")
			},
			expectError: true,
		},
		{
			name: "debounce too short",
			setup: func() {
				viper.Reset()
				SetDefaults()
				viper.Set(KeyDebounce, "1ms")
			},
			expectError: true,
		},
		{
			name: "debounce too long",
			setup: func() {
				viper.Reset()
				SetDefaults()
				viper.Set(KeyDebounce, "1m")
			},
			expectError: true,
		},
		{
			name: "missing dir",
			setup: func() {
				viper.Reset()
				SetDefaults()
				viper.Set(KeyDir, filepath.Join(dir, "missing"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			t.Cleanup(viper.Reset)

			settings, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, settings)
				return
			}
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".devw.yml")
	content := "log_level: warn\nwatch:\n  debounce: 500ms\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", settings.LogLevel)
	assert.Equal(t, 500*time.Millisecond, settings.Watch.Debounce)
	assert.Equal(t, "text", settings.LogFormat)
}

func TestSettingsRoot(t *testing.T) {
	dir := t.TempDir()
	s := &Settings{Dir: dir}

	root, err := s.Root()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(root))
	assert.Equal(t, filepath.Clean(dir), root)
}

func TestSettingsLoggerConfig(t *testing.T) {
	s := &Settings{LogLevel: "error", LogFormat: "json"}

	cfg := s.LoggerConfig()
	assert.Equal(t, logging.LevelError, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.NotNil(t, cfg.Output)
}
