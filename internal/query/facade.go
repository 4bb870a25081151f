// Package query is the read API of the content pipeline. A Facade composes
// the store, the front matter validator, the MDX compiler and the relation
// resolver, memoizes every outcome for the lifetime of a build and converts
// all failures into absence at its boundary. Failures are recorded as
// diagnostics according to the per-type severity policy.
package query

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/diagnostics"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/mdx"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
	"git.home.luguber.info/inful/contentpipe/internal/relations"
	"git.home.luguber.info/inful/contentpipe/internal/schema"
	"git.home.luguber.info/inful/contentpipe/internal/store"
)

type docKey struct {
	t    content.Type
	slug string
}

type relKey struct {
	from docKey
	to   content.Type
}

// memo is the single outcome of resolving one document.
type memo struct {
	once  sync.Once
	entry *content.Entry
	err   error
}

// Facade resolves documents. It is safe for concurrent use.
type Facade struct {
	store     store.Store
	compiler  *mdx.Compiler
	validator *schema.Validator
	resolver  *relations.Resolver
	diags     *diagnostics.Collector
	recorder  metrics.Recorder
	logger    *slog.Logger
	workers   int
	fatal     map[content.Type]bool
	fixed     map[content.Type][]string

	mu   sync.Mutex
	docs map[docKey]*memo
	rels map[relKey]relations.Result
}

// Option configures a Facade.
type Option func(*Facade)

// WithFatalTypes makes front matter failures of the given types fatal. All
// other types skip failing documents with a warning.
func WithFatalTypes(types ...content.Type) Option {
	return func(f *Facade) {
		for _, t := range types {
			f.fatal[t] = true
		}
	}
}

// WithFixedSlugs declares the closed slug set of type t. Slugs outside it
// never resolve and the set, not the store listing, drives enumeration.
func WithFixedSlugs(t content.Type, slugs []string) Option {
	return func(f *Facade) {
		s := slices.Clone(slugs)
		sort.Strings(s)
		f.fixed[t] = slices.Compact(s)
	}
}

// WithWorkers bounds concurrent resolutions in AllDocuments. Zero or less
// means one per CPU.
func WithWorkers(n int) Option {
	return func(f *Facade) { f.workers = n }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(f *Facade) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) { f.logger = l }
}

// WithDiagnostics shares a collector instead of allocating one.
func WithDiagnostics(c *diagnostics.Collector) Option {
	return func(f *Facade) {
		if c != nil {
			f.diags = c
		}
	}
}

// New builds a facade reading from st and compiling with compiler.
func New(st store.Store, compiler *mdx.Compiler, opts ...Option) *Facade {
	f := &Facade{
		store:     st,
		compiler:  compiler,
		validator: schema.NewValidator(),
		diags:     diagnostics.NewCollector(),
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
		fatal:     make(map[content.Type]bool),
		fixed:     make(map[content.Type][]string),
		docs:      make(map[docKey]*memo),
		rels:      make(map[relKey]relations.Result),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.workers <= 0 {
		f.workers = runtime.NumCPU()
	}
	f.resolver = relations.New(f,
		relations.WithReporter(danglingReporter{diags: f.diags, recorder: f.recorder}),
		relations.WithLogger(f.logger))
	return f
}

// Diagnostics returns the collector failures are recorded in.
func (f *Facade) Diagnostics() *diagnostics.Collector {
	return f.diags
}

// Reset forgets every memoized outcome and recorded diagnostic, so the next
// calls observe the store as it is now.
func (f *Facade) Reset() {
	f.mu.Lock()
	f.docs = make(map[docKey]*memo)
	f.rels = make(map[relKey]relations.Result)
	f.mu.Unlock()
	f.diags.Reset()
}

// Document returns the resolved document, or false when it does not exist or
// failed to load for any reason.
func (f *Facade) Document(ctx context.Context, t content.Type, slug string) (*content.Entry, bool) {
	e, err := f.Lookup(ctx, t, slug)
	return e, err == nil
}

// Exists reports whether Document would succeed. Route enumeration uses
// exactly this predicate.
func (f *Facade) Exists(ctx context.Context, t content.Type, slug string) bool {
	_, ok := f.Document(ctx, t, slug)
	return ok
}

// Lookup is Document with the reason for absence. The error is classified:
// not_found, schema, compile, validation (slug collision) or filesystem.
func (f *Facade) Lookup(ctx context.Context, t content.Type, slug string) (*content.Entry, error) {
	k := docKey{t: t, slug: slug}
	for {
		f.mu.Lock()
		m, ok := f.docs[k]
		if !ok {
			m = &memo{}
			f.docs[k] = m
		}
		f.mu.Unlock()

		m.once.Do(func() {
			m.entry, m.err = f.resolve(ctx, t, slug)
		})
		if m.err == nil || !isCanceled(m.err) {
			return m.entry, m.err
		}

		// An interrupted resolution says nothing about the document.
		f.mu.Lock()
		if f.docs[k] == m {
			delete(f.docs, k)
		}
		f.mu.Unlock()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// Candidates returns the sorted slugs that may exist for type t: the fixed
// set when one is declared, otherwise the store listing.
func (f *Facade) Candidates(ctx context.Context, t content.Type) ([]string, error) {
	if fixed, ok := f.fixed[t]; ok {
		return slices.Clone(fixed), nil
	}
	return f.store.ListSlugs(ctx, t)
}

// AllDocuments resolves every candidate of type t concurrently and returns
// those that resolved, sorted by slug.
func (f *Facade) AllDocuments(ctx context.Context, t content.Type) []*content.Entry {
	slugs, err := f.Candidates(ctx, t)
	if err != nil {
		f.logger.Error("Failed to list documents", logfields.ContentType(t.String()), logfields.Error(err))
		if !isCanceled(err) {
			f.diags.Add(diagnostics.Diagnostic{
				Kind:    diagnostics.KindRead,
				Level:   diagnostics.LevelFatal,
				Type:    t,
				Message: err.Error(),
			})
		}
		return nil
	}

	results := make([]*content.Entry, len(slugs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, slug := range slugs {
		g.Go(func() error {
			if e, ok := f.Document(gctx, t, slug); ok {
				results[i] = e
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*content.Entry, 0, len(results))
	for _, e := range results {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Related resolves the references e declares towards type to. The result is
// computed on first use and reused for the rest of the build.
func (f *Facade) Related(ctx context.Context, e *content.Entry, to content.Type) relations.Result {
	if e == nil {
		return relations.Result{}
	}
	k := relKey{from: docKey{t: e.Type, slug: e.Slug}, to: to}
	f.mu.Lock()
	res, ok := f.rels[k]
	f.mu.Unlock()
	if ok {
		return res
	}

	res = f.resolver.Related(ctx, e, to)
	if ctx.Err() != nil {
		return res
	}
	f.mu.Lock()
	f.rels[k] = res
	f.mu.Unlock()
	return res
}

// RelatedSlugs resolves bare slugs of type to, preserving their order.
// Unresolved slugs are returned in Missing.
func (f *Facade) RelatedSlugs(ctx context.Context, to content.Type, slugs []string) relations.Result {
	return f.resolver.Slugs(ctx, to, slugs)
}

// Compile compiles a body with the facade's compiler, outside any document.
func (f *Facade) Compile(ctx context.Context, body []byte) (mdx.CompiledContent, error) {
	return f.compiler.Compile(ctx, body)
}

func (f *Facade) resolve(ctx context.Context, t content.Type, slug string) (*content.Entry, error) {
	if fixed, ok := f.fixed[t]; ok {
		if _, found := slices.BinarySearch(fixed, slug); !found {
			f.recorder.IncDocumentResult(t.String(), metrics.ResultNotFound)
			return nil, ferrors.NotFoundError("slug is not part of the fixed set").
				WithCause(store.ErrNotFound).
				WithContext("content_type", t.String()).
				WithContext("slug", slug).
				Build()
		}
	}

	raw, err := f.store.ReadRaw(ctx, t, slug)
	if err != nil {
		return nil, f.readFailure(t, slug, err)
	}

	fm, err := f.validator.Validate(t, slug, raw.Frontmatter)
	if err != nil {
		return nil, f.schemaFailure(t, slug, raw.Path, err)
	}

	start := time.Now()
	body, err := f.compiler.Compile(ctx, raw.Body)
	f.recorder.ObserveCompileDuration(t.String(), time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			f.recorder.IncDocumentResult(t.String(), metrics.ResultCanceled)
			return nil, ctx.Err()
		}
		return nil, f.compileFailure(t, slug, raw.Path, err)
	}

	f.recorder.IncDocumentResult(t.String(), metrics.ResultSuccess)
	return &content.Entry{
		Slug:        slug,
		Type:        t,
		Path:        raw.Path,
		Frontmatter: fm,
		Body:        body,
	}, nil
}

func (f *Facade) level(t content.Type) (diagnostics.Level, ferrors.ErrorSeverity, metrics.ResultLabel) {
	if f.fatal[t] {
		return diagnostics.LevelFatal, ferrors.SeverityFatal, metrics.ResultFatal
	}
	return diagnostics.LevelWarning, ferrors.SeverityWarning, metrics.ResultWarning
}

func (f *Facade) readFailure(t content.Type, slug string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		f.logger.Debug("Document not found", logfields.ContentType(t.String()), logfields.Slug(slug))
		f.recorder.IncDocumentResult(t.String(), metrics.ResultNotFound)
		return err
	case isCanceled(err):
		f.recorder.IncDocumentResult(t.String(), metrics.ResultCanceled)
		return err
	}

	kind := diagnostics.KindRead
	switch {
	case errors.Is(err, store.ErrSlugCollision):
		kind = diagnostics.KindSlugCollision
	case ferrors.HasCategory(err, ferrors.CategorySchema):
		kind = diagnostics.KindSchema
	}
	f.record(t, slug, kind, nil, err)
	return err
}

func (f *Facade) schemaFailure(t content.Type, slug, path string, err error) error {
	var fields []string
	var se *schema.Error
	if errors.As(err, &se) {
		fields = se.Fields()
	}
	_, sev, _ := f.level(t)
	wrapped := ferrors.SchemaError("front matter failed validation").
		WithCause(err).
		WithSeverity(sev).
		WithContext("content_type", t.String()).
		WithContext("slug", slug).
		WithContext("path", path).
		WithContext("fields", fields).
		Build()
	f.record(t, slug, diagnostics.KindSchema, fields, err)
	return wrapped
}

func (f *Facade) compileFailure(t content.Type, slug, path string, err error) error {
	b := ferrors.CompileError("body failed to compile").
		WithCause(err).
		Fatal().
		WithContext("content_type", t.String()).
		WithContext("slug", slug).
		WithContext("path", path)
	var ce *mdx.Error
	if errors.As(err, &ce) {
		if ce.Component != "" {
			b = b.WithContext("component", ce.Component)
		}
		if ce.Line > 0 {
			b = b.WithContext("line", ce.Line)
		}
	}
	f.logger.Error("Document body failed to compile",
		logfields.ContentType(t.String()),
		logfields.Slug(slug),
		logfields.Path(path),
		logfields.Error(err))
	f.recorder.IncDocumentResult(t.String(), metrics.ResultFatal)
	f.diags.Add(diagnostics.Diagnostic{
		Kind:    diagnostics.KindCompile,
		Level:   diagnostics.LevelFatal,
		Type:    t,
		Slug:    slug,
		Fields:  []string{"body"},
		Message: err.Error(),
	})
	return b.Build()
}

// record applies the type's severity policy to a load failure.
func (f *Facade) record(t content.Type, slug string, kind diagnostics.Kind, fields []string, err error) {
	level, _, result := f.level(t)
	attrs := []any{
		logfields.ContentType(t.String()),
		logfields.Slug(slug),
		logfields.Error(err),
	}
	if level == diagnostics.LevelFatal {
		f.logger.Error("Document failed to load", attrs...)
	} else {
		f.logger.Warn("Skipping document", attrs...)
	}
	f.recorder.IncDocumentResult(t.String(), result)
	f.diags.Add(diagnostics.Diagnostic{
		Kind:    kind,
		Level:   level,
		Type:    t,
		Slug:    slug,
		Fields:  fields,
		Message: err.Error(),
	})
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// danglingReporter fans dangling references out to diagnostics and metrics.
type danglingReporter struct {
	diags    *diagnostics.Collector
	recorder metrics.Recorder
}

func (r danglingReporter) Dangling(ref content.RelationRef) {
	r.diags.Dangling(ref)
	r.recorder.IncDanglingRelation(ref.From.String(), ref.To.String())
}
