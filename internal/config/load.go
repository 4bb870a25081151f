package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// envFiles are loaded, in order, from the configuration file's directory.
// Variables already set in the process environment win.
var envFiles = []string{".env", ".env.local"}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError(fmt.Sprintf("configuration file not found: %s", path)).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration file").
			WithContext("path", path).Build()
	}
	baseDir := filepath.Dir(path)
	if err := loadEnvFiles(baseDir); err != nil {
		return nil, err
	}
	cfg, err := Parse(data, baseDir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default rooted at
// the file's directory.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := loadEnvFiles(filepath.Dir(path)); err != nil {
			return nil, err
		}
		cfg := Default()
		cfg.baseDir = filepath.Dir(path)
		return cfg, nil
	}
	return Load(path)
}

// Parse decodes configuration YAML. ${VAR} references are expanded from the
// environment first; relative paths resolve against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to decode configuration").Build()
	}
	if baseDir == "" {
		baseDir = "."
	}
	cfg.baseDir = baseDir

	if err := normalizeTypeKeys(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ContentRoot returns the content root as a filesystem path.
func (c *Config) ContentRoot() string {
	return c.resolve(c.Content.Root)
}

// OutputDir returns the build output directory as a filesystem path.
func (c *Config) OutputDir() string {
	return c.resolve(c.Build.OutputDir)
}

// MetricsTextfile returns the metrics textfile path, or "" when disabled.
func (c *Config) MetricsTextfile() string {
	if c.Metrics.Textfile == "" {
		return ""
	}
	return c.resolve(c.Metrics.Textfile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// normalizeTypeKeys rewrites type keys ("services", "locations") to their
// canonical names and normalizes severities.
func normalizeTypeKeys(cfg *Config) error {
	if len(cfg.Types) == 0 {
		return nil
	}
	out := make(map[string]*TypeConfig, len(cfg.Types))
	for key, tc := range cfg.Types {
		t, err := content.ParseType(key)
		if err != nil {
			return ferrors.ConfigError(fmt.Sprintf("types: %v", err)).WithContext("key", key).Build()
		}
		if _, dup := out[t.String()]; dup {
			return ferrors.ConfigError(fmt.Sprintf("types: %s configured more than once", t)).WithContext("key", key).Build()
		}
		if tc != nil && tc.OnSchemaError != "" {
			sev, err := NormalizeSeverity(string(tc.OnSchemaError))
			if err != nil {
				return ferrors.ConfigError(fmt.Sprintf("types.%s.on_schema_error: %v", t, err)).Build()
			}
			tc.OnSchemaError = sev
		}
		out[t.String()] = tc
	}
	cfg.Types = out
	return nil
}

func loadEnvFiles(dir string) error {
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load environment file").
				WithContext("path", p).Build()
		}
	}
	return nil
}
