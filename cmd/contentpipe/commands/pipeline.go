package commands

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/contentpipe/internal/config"
	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/diagnostics"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/mdx"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
	"git.home.luguber.info/inful/contentpipe/internal/pagemeta"
	"git.home.luguber.info/inful/contentpipe/internal/query"
	"git.home.luguber.info/inful/contentpipe/internal/routes"
	"git.home.luguber.info/inful/contentpipe/internal/sitegen"
	"git.home.luguber.info/inful/contentpipe/internal/store"
)

// pipeline is the component graph built from one configuration.
type pipeline struct {
	cfg         *config.Config
	recorder    *metrics.PrometheusRecorder
	diagnostics *diagnostics.Collector
	facade      *query.Facade
	routes      *routes.Enumerator
	meta        *pagemeta.Generator
	logger      *slog.Logger
}

func newPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	root := cfg.ContentRoot()
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return nil, ferrors.ConfigError("content root is not a directory").WithContext("path", root).Build()
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	rec := metrics.NewPrometheusRecorder(nil)
	diags := diagnostics.NewCollector()

	storeOpts := []store.Option{store.WithExtensions(cfg.Content.Extensions...), store.WithLogger(logger)}
	queryOpts := []query.Option{
		query.WithWorkers(cfg.Build.Workers),
		query.WithRecorder(rec),
		query.WithLogger(logger),
		query.WithDiagnostics(diags),
	}
	routeOpts := []routes.Option{routes.WithRecorder(rec), routes.WithLogger(logger)}
	for _, t := range content.AllTypes() {
		tc := cfg.Type(t)
		storeOpts = append(storeOpts, store.WithDir(t, tc.Dir))
		if tc.OnSchemaError == config.SeverityFatal {
			queryOpts = append(queryOpts, query.WithFatalTypes(t))
		}
		if len(tc.FixedSlugs) > 0 {
			queryOpts = append(queryOpts, query.WithFixedSlugs(t, tc.FixedSlugs))
		}
		routeOpts = append(routeOpts, routes.WithTemplate(t, tc.Route))
	}

	compiler := mdx.NewCompiler(registry,
		mdx.WithCache(mdx.NewMemoryCache()),
		mdx.WithCacheObserver(rec.IncCompileCache),
		mdx.WithTimeout(cfg.Build.CompileTimeout),
		mdx.WithLogger(logger))
	facade := query.New(store.New(os.DirFS(root), storeOpts...), compiler, queryOpts...)

	logger.Debug("Pipeline configured",
		logfields.Path(root),
		slog.String("components", registry.Version()),
		slog.Int("workers", cfg.Build.Workers))

	return &pipeline{
		cfg:         cfg,
		recorder:    rec,
		diagnostics: diags,
		facade:      facade,
		routes:      routes.New(facade, routeOpts...),
		meta:        pagemeta.New(facade, pagemeta.Site{Name: cfg.Site.Name, BaseURL: cfg.Site.BaseURL}),
		logger:      logger,
	}, nil
}

func (p *pipeline) builder(outputDir string, dryRun bool) *sitegen.Builder {
	return sitegen.New(p.facade, p.routes, p.meta,
		sitegen.WithOutputDir(outputDir),
		sitegen.WithDryRun(dryRun),
		sitegen.WithWorkers(p.cfg.Build.Workers),
		sitegen.WithRecorder(p.recorder),
		sitegen.WithLogger(p.logger))
}

// writeMetrics exports the recorded metrics when path is set. Failures are
// logged only: metrics never change a build's outcome.
func (p *pipeline) writeMetrics(path string) {
	if path == "" {
		return
	}
	if err := p.recorder.WriteTextfile(path); err != nil {
		p.logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
		return
	}
	p.logger.Debug("Wrote metrics textfile", logfields.Path(path))
}

func (c *CLI) pipeline() (*pipeline, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return newPipeline(cfg, slog.Default())
}
