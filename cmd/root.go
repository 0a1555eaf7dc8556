// Package cmd provides the command-line interface for tephra with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --templates-root, etc.) - highest priority
//	2. TEPHRA_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (TEPHRA_TEMPLATES_ROOT, etc.)
//	4. Configuration files (.tephra.yml) - lowest priority
//
// Environment Variables:
//
//	TEPHRA_CONFIG_FILE: Path to custom configuration file
//	TEPHRA_TEMPLATES_ROOT: Override the template root
//	TEPHRA_CACHE_DIR: Override the cache directory
//	And more following the TEPHRA_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tephra-dev/tephra/internal/config"
	"github.com/tephra-dev/tephra/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tephra",
	Short: "A caching template-to-PHP precompiler",
	Long: `Tephra compiles templates written in a small templating language
(interpolation, conditionals, loops, inheritance, includes) into PHP source
artifacts, cached on disk with dependency-aware freshness checks.

Key Features:
  • Single-parent inheritance with strict block/yield matching
  • Recursive includes with cycle protection
  • HTML-escaped and raw interpolation
  • Atomic, crash-safe artifact cache
  • Watch mode with dependency-aware recompilation

Quick Start:
  tephra init                     Initialize a new project
  tephra compile pages/home       Compile one template
  tephra watch                    Recompile on change
  tephra clear                    Drop all cached artifacts`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscore spellings for flag names (--log_level == --log-level).
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tephra.yml, can also use TEPHRA_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("templates-root", "", "template root directory")
	rootCmd.PersistentFlags().String("cache-dir", "", "compiled artifact cache directory")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("templates.root", rootCmd.PersistentFlags().Lookup("templates-root"))
	viper.BindPFlag("cache.dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. TEPHRA_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .tephra.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TEPHRA_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tephra")
	}

	// Enable automatic environment variable binding with TEPHRA_ prefix
	// Examples: TEPHRA_TEMPLATES_ROOT, TEPHRA_CACHE_DIR
	viper.SetEnvPrefix("TEPHRA")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file degrades to defaults without failing.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration and a logger for commands.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if viper.IsSet("log-level") {
		level = viper.GetString("log-level")
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(level),
		Format: "text",
		Output: os.Stderr,
	})

	return cfg, logger, nil
}
