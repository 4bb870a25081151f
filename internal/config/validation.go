package config

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/mdx"
)

var extensionPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Validate checks the configuration domain by domain and returns the first
// problem as a config-category error.
func Validate(cfg *Config) error {
	cv := &configurationValidator{config: cfg}
	for _, step := range []func() error{
		cv.validateContent,
		cv.validateTypes,
		cv.validateComponents,
		cv.validateBuild,
		cv.validateSite,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func invalid(field, format string, args ...any) error {
	return ferrors.ConfigError(fmt.Sprintf("%s: %s", field, fmt.Sprintf(format, args...))).
		WithContext("field", field).
		Build()
}

func (cv *configurationValidator) validateContent() error {
	if strings.TrimSpace(cv.config.Content.Root) == "" {
		return invalid("content.root", "must not be empty")
	}
	if len(cv.config.Content.Extensions) == 0 {
		return invalid("content.extensions", "at least one extension is required")
	}
	for _, ext := range cv.config.Content.Extensions {
		if !extensionPattern.MatchString(ext) {
			return invalid("content.extensions", "%q is not a lower-case extension without dot", ext)
		}
	}
	return nil
}

func (cv *configurationValidator) validateTypes() error {
	dirs := map[string]content.Type{}
	routes := map[string]content.Type{}
	for _, t := range content.AllTypes() {
		tc := cv.config.Type(t)
		field := "types." + t.String()

		dir := path.Clean(tc.Dir)
		if tc.Dir == "" || dir == "." || strings.HasPrefix(dir, "..") || path.IsAbs(dir) {
			return invalid(field+".dir", "%q must be a relative directory inside the content root", tc.Dir)
		}
		if other, dup := dirs[dir]; dup {
			return invalid(field+".dir", "%q is already used by %s", tc.Dir, other)
		}
		dirs[dir] = t

		switch tc.OnSchemaError {
		case SeverityFatal, SeveritySkip:
		default:
			return invalid(field+".on_schema_error", "%q must be fatal or skip", tc.OnSchemaError)
		}

		if !strings.HasPrefix(tc.Route, "/") || strings.Count(tc.Route, "[slug]") != 1 {
			return invalid(field+".route", "%q must start with / and contain [slug] exactly once", tc.Route)
		}
		if other, dup := routes[tc.Route]; dup {
			return invalid(field+".route", "%q is already used by %s", tc.Route, other)
		}
		routes[tc.Route] = t

		seen := map[string]bool{}
		for _, s := range tc.FixedSlugs {
			if !content.ValidSlug(s) {
				return invalid(field+".fixed_slugs", "%q is not a URL-safe slug", s)
			}
			if seen[s] {
				return invalid(field+".fixed_slugs", "%q listed twice", s)
			}
			seen[s] = true
		}
	}
	return nil
}

func (cv *configurationValidator) validateComponents() error {
	if _, err := cv.config.Registry(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "components: invalid allow-list").
			WithContext("field", "components").
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	b := cv.config.Build
	if b.Workers < 0 {
		return invalid("build.workers", "must not be negative")
	}
	if b.CompileTimeout < 0 {
		return invalid("build.compile_timeout", "must not be negative")
	}
	if strings.TrimSpace(b.OutputDir) == "" {
		return invalid("build.output_dir", "must not be empty")
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	raw := cv.config.Site.BaseURL
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("site.base_url", "%q must be an absolute http(s) URL", raw)
	}
	return nil
}

// Registry builds the MDX component allow-list from the configuration.
func (c *Config) Registry() (*mdx.Registry, error) {
	components := make([]mdx.Component, 0, len(c.Components))
	for _, cc := range c.Components {
		components = append(components, mdx.Component{
			Name:    cc.Name,
			Element: cc.Element,
			Props:   cc.Props,
			Void:    cc.Void,
		})
	}
	return mdx.NewRegistry(components...)
}
