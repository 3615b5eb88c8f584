package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	t.Run("deny-by-default tag list excludes active content", func(t *testing.T) {
		for _, tag := range cfg.Security.AllowedTags {
			assert.NotEqual(t, "script", tag)
			assert.NotEqual(t, "iframe", tag)
			assert.NotEqual(t, "object", tag)
			assert.NotEqual(t, "embed", tag)
		}
	})

	t.Run("only http and https schemes", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"http", "https"}, cfg.Security.URLSchemes)
	})

	t.Run("store limits are set", func(t *testing.T) {
		assert.Equal(t, int64(512*1024), cfg.Store.MaxContentBytes)
		assert.Equal(t, 5*time.Minute, cfg.Store.CacheTTL)
		assert.Equal(t, []string{".html", ".htm"}, cfg.Store.AllowedExtensions)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "out of range",
		},
		{
			name:    "zero max content bytes",
			mutate:  func(c *Config) { c.Store.MaxContentBytes = 0 },
			wantErr: "max_content_bytes",
		},
		{
			name:    "zero cache ttl",
			mutate:  func(c *Config) { c.Store.CacheTTL = 0 },
			wantErr: "cache_ttl",
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.Store.AllowedExtensions = []string{"html"} },
			wantErr: "must start with a dot",
		},
		{
			name:    "dangerous url scheme",
			mutate:  func(c *Config) { c.Security.URLSchemes = append(c.Security.URLSchemes, "javascript") },
			wantErr: "must not include",
		},
		{
			name:    "non-http origin",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = []string{"ftp://example.com"} },
			wantErr: "only http/https",
		},
		{
			name:    "bad base url scheme",
			mutate:  func(c *Config) { c.Store.BaseURL = "file:///tmp" },
			wantErr: "only http/https",
		},
		{
			name:    "zero animation timeout",
			mutate:  func(c *Config) { c.Engine.AnimationTimeout = 0 },
			wantErr: "animation_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
