// Package config loads and validates the contentpipe configuration file.
package config

import (
	"time"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "contentpipe.yaml"

// Config is the complete configuration.
type Config struct {
	Content    ContentConfig          `yaml:"content"`
	Types      map[string]*TypeConfig `yaml:"types,omitempty"`
	Components []ComponentConfig      `yaml:"components,omitempty"`
	Build      BuildConfig            `yaml:"build"`
	Site       SiteConfig             `yaml:"site"`
	Logging    LoggingConfig          `yaml:"logging"`
	Metrics    MetricsConfig          `yaml:"metrics"`

	// baseDir is the directory relative paths are resolved against.
	baseDir string
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	Root       string   `yaml:"root"`       // Directory holding one sub-directory per content type
	Extensions []string `yaml:"extensions"` // Document file extensions, without dots
}

// Severity is the policy for documents of a type whose front matter fails
// validation.
type Severity string

const (
	// SeverityFatal fails the build, naming the slug and fields.
	SeverityFatal Severity = "fatal"
	// SeveritySkip drops the document with a warning.
	SeveritySkip Severity = "skip"
)

// TypeConfig configures one content type. Map keys in Config.Types are type
// names as accepted by content.ParseType.
type TypeConfig struct {
	Dir           string   `yaml:"dir"`
	OnSchemaError Severity `yaml:"on_schema_error"`
	// FixedSlugs, when set, is the closed slug set of the type: routes are
	// enumerated from it and slugs outside it never resolve.
	FixedSlugs []string `yaml:"fixed_slugs,omitempty"`
	Route      string   `yaml:"route"`
}

// ComponentConfig is one MDX component allow-list entry.
type ComponentConfig struct {
	Name    string   `yaml:"name"`
	Element string   `yaml:"element"`
	Props   []string `yaml:"props,omitempty"`
	Void    bool     `yaml:"void,omitempty"`
}

// BuildConfig controls static generation.
type BuildConfig struct {
	Workers        int           `yaml:"workers"`         // Concurrent document resolutions; 0 means one per CPU
	CompileTimeout time.Duration `yaml:"compile_timeout"` // Per-document MDX compile bound
	OutputDir      string        `yaml:"output_dir"`
}

// SiteConfig carries site-wide values used for page metadata.
type SiteConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Type returns the effective configuration of content type t. Defaults are
// applied on load, so every valid type has an entry.
func (c *Config) Type(t content.Type) TypeConfig {
	if tc, ok := c.Types[t.String()]; ok && tc != nil {
		return *tc
	}
	return defaultTypeConfig(t)
}

// BaseDir returns the directory relative paths in the file are resolved
// against (the directory holding the configuration file).
func (c *Config) BaseDir() string {
	return c.baseDir
}
