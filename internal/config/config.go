// Package config loads, defaults, and validates the build configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syy321818/blogbuilder/internal/content"
	berrors "github.com/syy321818/blogbuilder/internal/errors"
	"github.com/syy321818/blogbuilder/internal/index"
	"github.com/syy321818/blogbuilder/internal/plan"
)

// Config is the root configuration structure.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Pagination PaginationConfig `yaml:"pagination"`
	Output     OutputConfig     `yaml:"output"`
	Build      BuildConfig      `yaml:"build"`
	Watch      WatchConfig      `yaml:"watch"`
	History    HistoryConfig    `yaml:"history"`
}

// SiteConfig carries site-wide metadata handed to the renderer.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ContentConfig describes the content corpus.
type ContentConfig struct {
	Dir string `yaml:"dir"`

	// PostSeparator is the marker line that splits multi-post files.
	// Unset means the default marker; an explicit empty string disables
	// splitting.
	PostSeparator *string `yaml:"post_separator,omitempty"`

	// TagPolicy selects tag/category name merging: "fold" (case-insensitive,
	// first-seen casing is canonical) or "strict" (case-sensitive).
	TagPolicy string `yaml:"tag_policy,omitempty"`

	// GitLastmod enables last-modified enrichment from git history when the
	// content dir is inside a git worktree.
	GitLastmod bool `yaml:"git_lastmod,omitempty"`
}

// PaginationConfig controls listing page sizes.
type PaginationConfig struct {
	// PageSize is the number of items per listing page. Unset means the
	// default; an explicit non-positive value fails validation rather than
	// being corrected.
	PageSize *int `yaml:"page_size,omitempty"`
}

// Size resolves the effective page size.
func (p PaginationConfig) Size() int {
	if p.PageSize == nil {
		return plan.DefaultPageSize
	}
	return *p.PageSize
}

// OutputConfig controls where rendered pages land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// BuildConfig controls run behavior.
type BuildConfig struct {
	// Strict fails the whole run when any unit is excluded by a parse error,
	// instead of degrading to a partial build.
	Strict bool `yaml:"strict,omitempty"`

	// Workers bounds the parse and render worker pools. 0 means one worker
	// per logical CPU.
	Workers int `yaml:"workers,omitempty"`
}

// WatchConfig controls watch mode. Durations are Go duration strings
// ("500ms", "2m") parsed during validation.
type WatchConfig struct {
	Debounce        string `yaml:"debounce,omitempty"`
	MaxDelay        string `yaml:"max_delay,omitempty"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
	MetricsAddr     string `yaml:"metrics_addr,omitempty"`
}

// DebounceDuration returns the parsed debounce window.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// MaxDelayDuration returns how long a sustained burst of changes may
// postpone a rebuild. Unset defaults to ten quiet windows.
func (w WatchConfig) MaxDelayDuration() time.Duration {
	d, err := time.ParseDuration(w.MaxDelay)
	if err != nil {
		return 10 * w.DebounceDuration()
	}
	return d
}

// RebuildIntervalDuration returns the parsed scheduled-rebuild interval,
// zero when no schedule is configured.
func (w WatchConfig) RebuildIntervalDuration() time.Duration {
	if w.RebuildInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(w.RebuildInterval)
	if err != nil {
		return 0
	}
	return d
}

// HistoryConfig controls the sqlite build-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// Separator resolves the effective multi-post split marker.
func (c ContentConfig) Separator() string {
	if c.PostSeparator == nil {
		return content.DefaultSeparator
	}
	return *c.PostSeparator
}

// Policy resolves the effective tag/category merge policy.
func (c ContentConfig) Policy() index.Policy {
	if c.TagPolicy == string(index.PolicyStrict) {
		return index.PolicyStrict
	}
	return index.PolicyFold
}

// Load reads, defaults, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil, berrors.ConfigNotFound(path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration with all defaults applied,
// rooted at the given content and output directories.
func Default(contentDir, outputDir string) *Config {
	cfg := &Config{}
	cfg.Content.Dir = contentDir
	cfg.Output.Dir = outputDir
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Untitled Site"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Content.TagPolicy == "" {
		c.Content.TagPolicy = string(index.PolicyFold)
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "site"
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "500ms"
	}
	if c.History.Path == "" {
		c.History.Path = "blogbuilder-history.db"
	}
}

// Validate checks the configuration before any build work starts. A bad
// pagination size must fail here, before indices are built.
func (c *Config) Validate() error {
	if err := plan.ValidatePageSize(c.Pagination.Size()); err != nil {
		return berrors.InvalidPlanConfig(err)
	}
	if c.Content.Dir == "" {
		return berrors.ValidationFailed("content.dir", "must not be empty")
	}
	if c.Output.Dir == "" {
		return berrors.ValidationFailed("output.dir", "must not be empty")
	}
	switch c.Content.TagPolicy {
	case string(index.PolicyFold), string(index.PolicyStrict):
	default:
		return berrors.ValidationFailed("content.tag_policy",
			fmt.Sprintf("must be %q or %q, got %q", index.PolicyFold, index.PolicyStrict, c.Content.TagPolicy))
	}
	if c.Build.Workers < 0 {
		return berrors.ValidationFailed("build.workers", "must not be negative")
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return berrors.ValidationFailed("watch.debounce", err.Error())
	}
	if c.Watch.RebuildInterval != "" {
		if _, err := time.ParseDuration(c.Watch.RebuildInterval); err != nil {
			return berrors.ValidationFailed("watch.rebuild_interval", err.Error())
		}
	}
	if c.Watch.MaxDelay != "" {
		if _, err := time.ParseDuration(c.Watch.MaxDelay); err != nil {
			return berrors.ValidationFailed("watch.max_delay", err.Error())
		}
	}
	return nil
}
