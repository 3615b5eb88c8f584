package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load builds a Config from viper's merged sources (config file, WEFT_*
// environment variables, bound flags), layered over Defaults.
func Load() (*Config, error) {
	config := Defaults()

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Viper leaves zero-value slices in place of absent keys; restore the
	// deny-by-default lists rather than ending up with allow-nothing
	// sanitization by accident.
	if !viper.IsSet("security.allowed_tags") && len(config.Security.AllowedTags) == 0 {
		config.Security.AllowedTags = DefaultAllowedTags()
	}
	if !viper.IsSet("security.global_attributes") && len(config.Security.GlobalAttributes) == 0 {
		config.Security.GlobalAttributes = DefaultGlobalAttributes()
	}
	if !viper.IsSet("security.tag_attributes") && len(config.Security.TagAttributes) == 0 {
		config.Security.TagAttributes = DefaultTagAttributes()
	}
	if !viper.IsSet("security.style_properties") && len(config.Security.StyleProperties) == 0 {
		config.Security.StyleProperties = DefaultStyleProperties()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the engine cannot operate
// with. It is deliberately strict: a misconfigured security section should
// fail startup, not silently widen the policy.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Store.MaxContentBytes <= 0 {
		return fmt.Errorf("store.max_content_bytes must be positive")
	}
	if c.Store.CacheTTL <= 0 {
		return fmt.Errorf("store.cache_ttl must be positive")
	}
	if c.Store.SweepInterval <= 0 {
		c.Store.SweepInterval = time.Minute
	}
	for _, ext := range c.Store.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("store.allowed_extensions entry %q must start with a dot", ext)
		}
	}
	if c.Store.BaseURL != "" {
		parsed, err := url.Parse(c.Store.BaseURL)
		if err != nil {
			return fmt.Errorf("store.base_url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("store.base_url scheme %q: only http/https allowed", parsed.Scheme)
		}
	}

	for _, scheme := range c.Security.URLSchemes {
		switch scheme {
		case "javascript", "vbscript", "file", "about":
			return fmt.Errorf("security.url_schemes must not include %q", scheme)
		}
	}

	for _, origin := range c.Security.AllowedOrigins {
		parsed, err := url.Parse(origin)
		if err != nil {
			return fmt.Errorf("security.allowed_origins entry %q: %w", origin, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("security.allowed_origins entry %q: only http/https allowed", origin)
		}
	}

	if c.Engine.ThrottleInterval < 0 {
		return fmt.Errorf("engine.throttle_interval must not be negative")
	}
	if c.Engine.AnimationTimeout <= 0 {
		return fmt.Errorf("engine.animation_timeout must be positive")
	}

	return nil
}
