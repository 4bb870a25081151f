// Package routes enumerates the concrete slugs each dynamic route template
// pre-renders.
//
// A slug is enumerated exactly when it resolves: the enumerator asks the
// same resolver pages use for the documents of a type and lists their slugs,
// so a route never 404s at build time and no resolvable page is missed.
package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
)

// SlugParam is the placeholder every template carries once.
const SlugParam = "[slug]"

// ErrUnknownTemplate is returned for a template no content type renders under.
var ErrUnknownTemplate = errors.New("unknown route template")

// Resolver lists the documents of a type that resolve, sorted by slug.
type Resolver interface {
	AllDocuments(ctx context.Context, t content.Type) []*content.Entry
}

// Param is one set of static params for a dynamic route.
type Param struct {
	Slug string `json:"slug"`
}

// Template binds a route pattern to the content type it renders.
type Template struct {
	Pattern string
	Type    content.Type
}

// Path substitutes slug into the pattern.
func (t Template) Path(slug string) string {
	return strings.Replace(t.Pattern, SlugParam, slug, 1)
}

// match extracts the slug from a concrete path rendered by t.
func (t Template) match(p string) (string, bool) {
	prefix, suffix, _ := strings.Cut(t.Pattern, SlugParam)
	if !strings.HasPrefix(p, prefix) || !strings.HasSuffix(p, suffix) || len(p) <= len(prefix)+len(suffix) {
		return "", false
	}
	slug := p[len(prefix) : len(p)-len(suffix)]
	if strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}

// Enumerator computes route sets.
type Enumerator struct {
	resolver  Resolver
	templates []Template
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// Option configures an Enumerator.
type Option func(*Enumerator)

// WithTemplate overrides the route pattern of content type t.
func WithTemplate(t content.Type, pattern string) Option {
	return func(e *Enumerator) {
		for i := range e.templates {
			if e.templates[i].Type == t {
				e.templates[i].Pattern = pattern
			}
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Enumerator) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enumerator) { e.logger = l }
}

// New returns an enumerator with one template per content type.
func New(resolver Resolver, opts ...Option) *Enumerator {
	e := &Enumerator{
		resolver: resolver,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, t := range content.AllTypes() {
		e.templates = append(e.templates, Template{Pattern: t.DefaultRoute(), Type: t})
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Templates returns the route templates in content type order.
func (e *Enumerator) Templates() []Template {
	return slices.Clone(e.templates)
}

// Template returns the template content type t renders under.
func (e *Enumerator) Template(t content.Type) (Template, bool) {
	for _, tpl := range e.templates {
		if tpl.Type == t {
			return tpl, true
		}
	}
	return Template{}, false
}

// Lookup returns the template with the given pattern.
func (e *Enumerator) Lookup(pattern string) (Template, error) {
	for _, tpl := range e.templates {
		if tpl.Pattern == pattern {
			return tpl, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, pattern)
}

// Enumerate returns the sorted slugs of type t that resolve.
func (e *Enumerator) Enumerate(ctx context.Context, t content.Type) []string {
	docs := e.resolver.AllDocuments(ctx, t)
	slugs := make([]string, 0, len(docs))
	for _, d := range docs {
		slugs = append(slugs, d.Slug)
	}
	slices.Sort(slugs)
	return slugs
}

// GenerateStaticParams lists the params of every page rendered under pattern.
func (e *Enumerator) GenerateStaticParams(ctx context.Context, pattern string) ([]Param, error) {
	tpl, err := e.Lookup(pattern)
	if err != nil {
		return nil, err
	}
	return toParams(e.Enumerate(ctx, tpl.Type)), nil
}

// EnumerateAll computes the route set of every template. Call it once at the
// start of a build and treat the result as fixed for the rest of it.
func (e *Enumerator) EnumerateAll(ctx context.Context) *RouteSet {
	rs := &RouteSet{templates: e.Templates(), slugs: make(map[string][]string, len(e.templates))}
	for _, tpl := range e.templates {
		slugs := e.Enumerate(ctx, tpl.Type)
		rs.slugs[tpl.Pattern] = slugs
		e.recorder.SetRoutes(tpl.Pattern, len(slugs))
		e.logger.Info("Enumerated routes", logfields.Route(tpl.Pattern), logfields.Count(len(slugs)))
	}
	return rs
}

// RouteSet is an immutable snapshot of the slugs per template.
type RouteSet struct {
	templates []Template
	slugs     map[string][]string
}

// Templates returns the templates of the set in content type order.
func (rs *RouteSet) Templates() []Template {
	return slices.Clone(rs.templates)
}

// Slugs returns a copy of the slugs enumerated for pattern.
func (rs *RouteSet) Slugs(pattern string) []string {
	return slices.Clone(rs.slugs[pattern])
}

// Params returns the static params of pattern.
func (rs *RouteSet) Params(pattern string) []Param {
	return toParams(rs.slugs[pattern])
}

// Contains reports whether slug is pre-rendered under pattern. False is the
// not-found signal for the page layer.
func (rs *RouteSet) Contains(pattern, slug string) bool {
	_, found := slices.BinarySearch(rs.slugs[pattern], slug)
	return found
}

// Len returns the number of routes across all templates.
func (rs *RouteSet) Len() int {
	n := 0
	for _, s := range rs.slugs {
		n += len(s)
	}
	return n
}

// Match resolves a concrete path such as /portfolio/acme-redesign against
// the set. ok is false when no template renders the path or its slug was not
// enumerated.
func (rs *RouteSet) Match(p string) (tpl Template, slug string, ok bool) {
	for _, t := range rs.templates {
		if s, matched := t.match(p); matched && rs.Contains(t.Pattern, s) {
			return t, s, true
		}
	}
	return Template{}, "", false
}

// MarshalJSON writes the set as {pattern: [{slug}...]}.
func (rs *RouteSet) MarshalJSON() ([]byte, error) {
	out := make(map[string][]Param, len(rs.slugs))
	for _, t := range rs.templates {
		out[t.Pattern] = rs.Params(t.Pattern)
	}
	return json.Marshal(out)
}

func toParams(slugs []string) []Param {
	params := make([]Param, 0, len(slugs))
	for _, s := range slugs {
		params = append(params, Param{Slug: s})
	}
	return params
}
