// Package config provides configuration management for the weft engine
// using Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with a WEFT_ prefix, and validation. It manages the security
// allow-lists (tags, attributes, styles, URL schemes, origins), template
// store limits, engine timing knobs, and the preview server.
//
// Defaults are restrictive: anything not explicitly listed is denied.
package config

import (
	"time"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Security SecurityConfig `yaml:"security"`
	Engine   EngineConfig   `yaml:"engine"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// ServerConfig configures the preview/dev server.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Environment    string   `yaml:"environment"`
}

// StoreConfig configures template fetching and caching.
type StoreConfig struct {
	// BaseURL is prepended to absolute template paths for network loads.
	BaseURL string `yaml:"base_url"`
	// TemplateRoot, when set, serves template paths from the local
	// filesystem instead of the network.
	TemplateRoot string `yaml:"template_root"`
	// AllowedExtensions lists template file extensions that may be loaded.
	AllowedExtensions []string `yaml:"allowed_extensions"`
	// KnownPaths, when non-empty, is a strict membership allow-list of
	// loadable template paths.
	KnownPaths []string `yaml:"known_paths"`
	// MaxContentBytes is the response/file size ceiling.
	MaxContentBytes int64 `yaml:"max_content_bytes"`
	// CacheTTL is how long a cached template stays fresh.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// SweepInterval is how often expired cache entries are pruned.
	SweepInterval time.Duration `yaml:"sweep_interval"`
	// SnapshotPath, when set, persists the cache across restarts.
	SnapshotPath string `yaml:"snapshot_path"`
	// FetchTimeout bounds a single network fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// WatchTemplates enables filesystem invalidation for TemplateRoot.
	WatchTemplates bool `yaml:"watch_templates"`
}

// SecurityConfig carries the sanitizer allow-lists and origin policy.
type SecurityConfig struct {
	AllowedTags      []string            `yaml:"allowed_tags"`
	GlobalAttributes []string            `yaml:"global_attributes"`
	TagAttributes    map[string][]string `yaml:"tag_attributes"`
	StyleProperties  []string            `yaml:"style_properties"`
	URLSchemes       []string            `yaml:"url_schemes"`
	AllowedOrigins   []string            `yaml:"allowed_origins"`
}

// EngineConfig carries directive-processor timing knobs.
type EngineConfig struct {
	// ThrottleInterval is the minimum re-trigger interval per
	// (node, event type) pair.
	ThrottleInterval time.Duration `yaml:"throttle_interval"`
	// AnimationTimeout bounds the wait for enter/exit animation signals
	// in the conditional directive.
	AnimationTimeout time.Duration `yaml:"animation_timeout"`
}

// PreviewConfig configures the mock render context used by `weft serve`
// and `weft render`.
type PreviewConfig struct {
	MockState map[string]interface{} `yaml:"mock_state"`
}
