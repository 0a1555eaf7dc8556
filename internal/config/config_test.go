package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./templates", cfg.Templates.Root)
	assert.Equal(t, ".tpl", cfg.Templates.Extension)
	assert.Equal(t, DefaultMaxIncludeDepth, cfg.Templates.MaxIncludeDepth)
	assert.Equal(t, ".tephra/cache", cfg.Cache.Dir)
	assert.True(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Templates.AllowRawCode)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied when nothing set", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "./templates", cfg.Templates.Root)
		assert.True(t, cfg.Cache.Enabled)
	})

	t.Run("viper values override defaults", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		viper.Set("templates.root", "./views")
		viper.Set("templates.allow_raw_code", true)
		viper.Set("cache.enabled", false)
		viper.Set("output.trim_whitespace", true)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "./views", cfg.Templates.Root)
		assert.True(t, cfg.Templates.AllowRawCode)
		assert.False(t, cfg.Cache.Enabled)
		assert.True(t, cfg.Output.TrimWhitespace)
	})

	t.Run("traversal in root rejected", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		viper.Set("templates.root", "../outside")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"empty root", func(c *Config) { c.Templates.Root = "" }, true},
		{"traversal in cache dir", func(c *Config) { c.Cache.Dir = "../cache" }, true},
		{"dangerous char in root", func(c *Config) { c.Templates.Root = "./views;rm" }, true},
		{"extension without dot", func(c *Config) { c.Templates.Extension = "tpl" }, true},
		{"zero include depth", func(c *Config) { c.Templates.MaxIncludeDepth = 0 }, true},
		{"absolute root allowed", func(c *Config) { c.Templates.Root = "/srv/app/templates" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
