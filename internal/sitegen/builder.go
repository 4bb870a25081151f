package sitegen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/contentpipe/internal/diagnostics"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
	"git.home.luguber.info/inful/contentpipe/internal/pagemeta"
	"git.home.luguber.info/inful/contentpipe/internal/query"
	"git.home.luguber.info/inful/contentpipe/internal/routes"
)

const (
	RoutesFile      = "routes.json"
	DiagnosticsFile = "diagnostics.json"
)

// Builder runs builds over one facade. It is not safe to run two builds of
// the same Builder concurrently.
type Builder struct {
	facade    *query.Facade
	enum      *routes.Enumerator
	meta      *pagemeta.Generator
	outputDir string
	dryRun    bool
	workers   int
	recorder  metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithOutputDir sets the directory the site is written to.
func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithDryRun resolves and validates everything without writing files.
func WithDryRun(dry bool) Option {
	return func(b *Builder) { b.dryRun = dry }
}

// WithWorkers bounds the number of payloads encoded at once.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New returns a Builder. The enumerator must resolve through facade.
func New(facade *query.Facade, enum *routes.Enumerator, meta *pagemeta.Generator, opts ...Option) *Builder {
	b := &Builder{
		facade:    facade,
		enum:      enum,
		meta:      meta,
		outputDir: "dist",
		workers:   runtime.NumCPU(),
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type rendered struct {
	page Page
	data []byte
	hash string
}

// Run performs one build. The facade is reset first so every build sees the
// content as it is on disk now.
//
// Healthy pages are written even when some documents fail; the returned
// error is then a fatal build error naming each failed document and field.
// The report is returned in every case.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	b.facade.Reset()
	r := newReport(uuid.NewString(), b.now())
	r.OutputDir = b.outputDir
	r.DryRun = b.dryRun
	log := b.logger.With(logfields.BuildID(r.BuildID))
	log.Info("Build started", logfields.Path(b.outputDir))

	pages, rs, err := b.render(ctx, r)
	if err == nil && !b.dryRun {
		err = b.write(pages, rs, r)
	}

	r.Diagnostics = b.facade.Diagnostics().All()
	r.Warnings, r.Fatal = countLevels(r.Diagnostics)
	if err == nil {
		err = fatalError(r.Diagnostics)
	}

	status := StatusSuccess
	switch {
	case ctx.Err() != nil:
		status = StatusCanceled
	case err != nil:
		status = StatusFailed
	}
	r.finish(b.now(), status)
	b.recorder.ObserveBuildDuration(r.Duration)
	if status == StatusSuccess {
		b.recorder.IncBuildOutcome(metrics.BuildSuccess)
	} else {
		b.recorder.IncBuildOutcome(metrics.BuildFailed)
	}

	attrs := []any{
		slog.String("status", string(status)),
		logfields.Count(r.Pages),
		logfields.DurationMS(float64(r.Duration.Microseconds()) / 1000),
		slog.Int("warnings", r.Warnings),
		slog.Int("fatal", r.Fatal),
	}
	if err != nil {
		log.Error("Build failed", append(attrs, logfields.Error(err))...)
		return r, err
	}
	log.Info("Build finished", attrs...)
	return r, nil
}

// render enumerates the route sets and builds every page payload.
func (b *Builder) render(ctx context.Context, r *Report) ([]rendered, *routes.RouteSet, error) {
	rs := b.enum.EnumerateAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, nil, canceled(err)
	}

	type job struct {
		tpl  routes.Template
		slug string
	}
	var jobs []job
	for _, tpl := range rs.Templates() {
		slugs := rs.Slugs(tpl.Pattern)
		r.Routes[tpl.Pattern] = len(slugs)
		for _, s := range slugs {
			jobs = append(jobs, job{tpl: tpl, slug: s})
		}
	}

	out := make([]rendered, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, j := range jobs {
		g.Go(func() error {
			e, ok := b.facade.Document(gctx, j.tpl.Type, j.slug)
			if !ok {
				if err := gctx.Err(); err != nil {
					return canceled(err)
				}
				return ferrors.InternalError("enumerated route does not resolve").
					WithContext("route", j.tpl.Path(j.slug)).
					Build()
			}
			page := b.page(gctx, j.tpl, e)
			data, err := json.MarshalIndent(page, "", "  ")
			if err != nil {
				return ferrors.WrapError(err, ferrors.CategoryInternal, "encode page").
					WithContext("route", page.Route).
					Build()
			}
			out[i] = rendered{page: page, data: data, hash: payloadHash(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	entries := make([]ManifestEntry, len(out))
	for i, p := range out {
		entries[i] = ManifestEntry{Route: p.page.Route, Hash: p.hash}
	}
	r.Pages = len(out)
	r.ManifestHash = ComputeManifestHash(entries)
	return out, rs, nil
}

func (b *Builder) write(pages []rendered, rs *routes.RouteSet, r *Report) error {
	st, err := beginStaging(b.outputDir)
	if err != nil {
		return err
	}
	entries := make([]ManifestEntry, 0, len(pages))
	for _, p := range pages {
		if err := st.writeFile(strings.TrimPrefix(p.page.Route, "/")+".json", p.data); err != nil {
			st.abort()
			return err
		}
		entries = append(entries, ManifestEntry{Route: p.page.Route, Hash: p.hash})
	}

	manifest := Manifest{Hash: r.ManifestHash, Routes: rs, Pages: entries}
	if err := st.writeJSON(RoutesFile, manifest); err != nil {
		st.abort()
		return err
	}
	if err := st.writeJSON(DiagnosticsFile, b.facade.Diagnostics()); err != nil {
		st.abort()
		return err
	}
	return st.finalize()
}

func countLevels(ds []diagnostics.Diagnostic) (warnings, fatal int) {
	for _, d := range ds {
		if d.Level == diagnostics.LevelFatal {
			fatal++
		} else {
			warnings++
		}
	}
	return warnings, fatal
}

// fatalError returns a build error naming every document that failed
// fatally, or nil when none did.
func fatalError(ds []diagnostics.Diagnostic) error {
	var failed []string
	for _, d := range ds {
		if d.Level != diagnostics.LevelFatal {
			continue
		}
		entry := fmt.Sprintf("%s/%s", d.Type, d.Slug)
		if len(d.Fields) > 0 {
			entry += " [" + strings.Join(d.Fields, ", ") + "]"
		}
		failed = append(failed, entry)
	}
	if len(failed) == 0 {
		return nil
	}
	return ferrors.BuildError(fmt.Sprintf("%d document(s) failed to load", len(failed))).
		WithContext("documents", strings.Join(failed, "; ")).
		Build()
}

func canceled(err error) error {
	return ferrors.WrapError(err, ferrors.CategoryBuild, "build canceled").Build()
}
