package config

import (
	"slices"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/mdx"
)

// DefaultServiceSlugs is the closed set of service pages.
var DefaultServiceSlugs = []string{"web-development", "mobile-apps", "cloud-solutions", "digital-marketing"}

// DefaultCompileTimeout bounds a single MDX compilation.
const DefaultCompileTimeout = mdx.DefaultTimeout

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

type contentDefaults struct{}

func (contentDefaults) Domain() string { return "content" }

func (contentDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Content.Root == "" {
		cfg.Content.Root = "content"
	}
	if len(cfg.Content.Extensions) == 0 {
		cfg.Content.Extensions = []string{"mdx", "md"}
	}
}

type typeDefaults struct{}

func (typeDefaults) Domain() string { return "types" }

func (typeDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Types == nil {
		cfg.Types = make(map[string]*TypeConfig)
	}
	for _, t := range content.AllTypes() {
		def := defaultTypeConfig(t)
		tc, ok := cfg.Types[t.String()]
		if !ok || tc == nil {
			cfg.Types[t.String()] = &def
			continue
		}
		if tc.Dir == "" {
			tc.Dir = def.Dir
		}
		if tc.OnSchemaError == "" {
			tc.OnSchemaError = def.OnSchemaError
		}
		if tc.Route == "" {
			tc.Route = def.Route
		}
		if tc.FixedSlugs == nil {
			tc.FixedSlugs = def.FixedSlugs
		}
	}
}

type componentDefaults struct{}

func (componentDefaults) Domain() string { return "components" }

func (componentDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Components != nil {
		return
	}
	for _, c := range mdx.DefaultComponents() {
		cfg.Components = append(cfg.Components, ComponentConfig{
			Name:    c.Name,
			Element: c.Element,
			Props:   slices.Clone(c.Props),
			Void:    c.Void,
		})
	}
}

type buildDefaults struct{}

func (buildDefaults) Domain() string { return "build" }

func (buildDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Build.CompileTimeout == 0 {
		cfg.Build.CompileTimeout = DefaultCompileTimeout
	}
	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = "dist"
	}
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}

var defaultAppliers = []DefaultApplier{
	contentDefaults{},
	typeDefaults{},
	componentDefaults{},
	buildDefaults{},
	loggingDefaults{},
}

// ApplyDefaults fills every unset value.
func ApplyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}

// Default returns a complete configuration for a content tree under
// ./content.
func Default() *Config {
	cfg := &Config{baseDir: "."}
	ApplyDefaults(cfg)
	return cfg
}

func defaultTypeConfig(t content.Type) TypeConfig {
	tc := TypeConfig{
		Dir:           t.DefaultDir(),
		OnSchemaError: SeveritySkip,
		Route:         t.DefaultRoute(),
	}
	if t == content.Service {
		tc.OnSchemaError = SeverityFatal
		tc.FixedSlugs = slices.Clone(DefaultServiceSlugs)
	}
	return tc
}
