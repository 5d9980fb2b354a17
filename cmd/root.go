// Package cmd provides the command-line interface for devw with configuration
// loaded from multiple sources.
//
// Configuration System:
//
//	Runtime settings are resolved with the following precedence:
//	1. Command-line flags (--log-level, --dir, etc.) - highest priority
//	2. Individual environment variables (DWF_LOG_LEVEL, DWF_DIR, ...)
//	3. Settings file (--config, DWF_CONFIG_FILE, or .devw.yml) - lowest priority
//
// Project rules are not part of these settings; they always live in the
// project's .dwf directory.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/devworkflows/internal/config"
	"github.com/conneroisu/devworkflows/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devw",
	Short: "Compile shared development rules into AI assistant config files",
	Long: `devw compiles the rules kept in .dwf/ into the native configuration files of
AI coding assistants, keeping hand-written content outside the generated block.

Supported tools:
  claude     CLAUDE.md
  cursor     .cursor/rules/devworkflows.mdc
  gemini     GEMINI.md
  windsurf   .windsurf/rules/devworkflows.md
  copilot    .github/copilot-instructions.md

Quick Start:
  devw compile                  Compile rules for every configured tool
  devw compile --dry-run        Show what would be written
  devw watch                    Recompile on every rule change
  devw doctor                   Check the project for problems
  devw explain --tool cursor    Show what a tool receives and why
  devw list rules               List enabled rules`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "settings file (default is .devw.yml, can also use DWF_CONFIG_FILE env var)")
	addSettingsFlags(flags)
}

// addSettingsFlags registers the flags that override settings and binds them
// to their viper keys.
func addSettingsFlags(flags *pflag.FlagSet) {
	flags.StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (text, json)")
	flags.StringP("dir", "C", ".", "project directory containing .dwf")

	_ = viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyDir, flags.Lookup("dir"))
}

// initConfig wires the settings file and DWF_ environment variables into viper.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("DWF_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".devw")
	}

	config.SetDefaults()

	// DWF_LOG_LEVEL, DWF_DIR, DWF_WATCH_DEBOUNCE, ...
	viper.SetEnvPrefix("DWF")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing settings file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// commandEnv is what every command needs to run against a project.
type commandEnv struct {
	settings *config.Settings
	root     string
	logger   logging.Logger
}

func loadEnv(cmd *cobra.Command) (*commandEnv, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	root, err := settings.Root()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	loggerConfig := settings.LoggerConfig()
	loggerConfig.Output = cmd.ErrOrStderr()

	return &commandEnv{
		settings: settings,
		root:     root,
		logger:   logging.NewLogger(loggerConfig),
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
