// Package config provides configuration management for tephra using Viper for
// flexible loading from files, environment variables, and command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with a TEPHRA_ prefix. It manages the template root, the cache
// directory, and the compile flags (cache enabled, whitespace trimming,
// HTML-comment removal, raw-code permission).
//
// A Config value is constructed once per render call and passed explicitly
// through the pipeline; nothing in the pipeline reads shared mutable globals,
// so concurrent compiles under different configurations cannot interfere.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultMaxIncludeDepth bounds recursive include expansion.
const DefaultMaxIncludeDepth = 16

type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Cache     CacheConfig     `yaml:"cache"`
	Output    OutputConfig    `yaml:"output"`
	LogLevel  string          `yaml:"log_level"`
}

type TemplatesConfig struct {
	// Root is the directory every template identifier must resolve inside.
	Root string `yaml:"root"`
	// Extension is appended to identifiers given without one.
	Extension string `yaml:"extension"`
	// MaxIncludeDepth bounds recursive include expansion.
	MaxIncludeDepth int `yaml:"max_include_depth"`
	// AllowRawCode gates {? ... ?} raw code blocks.
	AllowRawCode bool `yaml:"allow_raw_code"`
}

type CacheConfig struct {
	Dir     string `yaml:"dir"`
	Enabled bool   `yaml:"enabled"`
}

type OutputConfig struct {
	TrimWhitespace     bool `yaml:"trim_whitespace"`
	RemoveHTMLComments bool `yaml:"remove_html_comments"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Templates: TemplatesConfig{
			Root:            "./templates",
			Extension:       ".tpl",
			MaxIncludeDepth: DefaultMaxIncludeDepth,
		},
		Cache: CacheConfig{
			Dir:     ".tephra/cache",
			Enabled: true,
		},
		LogLevel: "info",
	}
}

// Load builds a Config from viper's current state, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle settings set via viper directly (workaround for viper handling
	// of nested keys bound from flags).
	if viper.IsSet("templates.root") {
		config.Templates.Root = viper.GetString("templates.root")
	}
	if viper.IsSet("templates.allow_raw_code") {
		config.Templates.AllowRawCode = viper.GetBool("templates.allow_raw_code")
	}
	if viper.IsSet("cache.dir") {
		config.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.enabled") {
		config.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("output.trim_whitespace") {
		config.Output.TrimWhitespace = viper.GetBool("output.trim_whitespace")
	}
	if viper.IsSet("output.remove_html_comments") {
		config.Output.RemoveHTMLComments = viper.GetBool("output.remove_html_comments")
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	def := Default()

	if config.Templates.Root == "" {
		config.Templates.Root = def.Templates.Root
	}
	if config.Templates.Extension == "" {
		config.Templates.Extension = def.Templates.Extension
	}
	if config.Templates.MaxIncludeDepth <= 0 {
		config.Templates.MaxIncludeDepth = def.Templates.MaxIncludeDepth
	}
	if config.Cache.Dir == "" {
		config.Cache.Dir = def.Cache.Dir
	}
	if !viper.IsSet("cache.enabled") {
		config.Cache.Enabled = def.Cache.Enabled
	}
	if config.LogLevel == "" {
		config.LogLevel = def.LogLevel
	}
}

// Validate checks configuration values for security and correctness.
func Validate(config *Config) error {
	if config.Templates.Root == "" {
		return fmt.Errorf("templates config: root must not be empty")
	}

	if err := validatePath(config.Templates.Root); err != nil {
		return fmt.Errorf("templates config: invalid root '%s': %w", config.Templates.Root, err)
	}

	if config.Templates.Extension != "" && !strings.HasPrefix(config.Templates.Extension, ".") {
		return fmt.Errorf("templates config: extension '%s' must start with a dot", config.Templates.Extension)
	}

	if config.Templates.MaxIncludeDepth < 1 {
		return fmt.Errorf("templates config: max_include_depth %d is not positive", config.Templates.MaxIncludeDepth)
	}

	if config.Cache.Dir == "" {
		return fmt.Errorf("cache config: dir must not be empty")
	}

	if err := validatePath(config.Cache.Dir); err != nil {
		return fmt.Errorf("cache config: invalid dir '%s': %w", config.Cache.Dir, err)
	}

	return nil
}

// validatePath validates a configured directory path for security.
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
