package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/contentpipe/internal/watch"
)

// WatchCmd builds once, then rebuilds on every settled content change until
// interrupted.
type WatchCmd struct {
	Output      string        `short:"o" help:"Output directory; overrides build.output_dir" type:"path"`
	MetricsFile string        `name:"metrics-file" help:"Rewrite Prometheus metrics to this textfile after each build" type:"path"`
	Debounce    time.Duration `help:"Quiet period before a rebuild" default:"500ms"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	p, err := root.pipeline()
	if err != nil {
		return err
	}
	out := p.cfg.OutputDir()
	if w.Output != "" {
		out = w.Output
	}
	metricsFile := p.cfg.MetricsTextfile()
	if w.MetricsFile != "" {
		metricsFile = w.MetricsFile
	}
	builder := p.builder(out, false)

	rebuild := func(ctx context.Context) error {
		report, err := builder.Run(ctx)
		p.writeMetrics(metricsFile)
		if report != nil {
			_, _ = fmt.Fprintln(g.Out, report.Summary())
		}
		return err
	}
	// The first build may fail; the author fixes content and the watcher
	// picks the change up.
	if err := rebuild(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("Initial build failed; watching for changes")
	}

	return watch.New(p.cfg.ContentRoot(), rebuild,
		watch.WithExtensions(p.cfg.Content.Extensions...),
		watch.WithDebounce(w.Debounce),
		watch.WithLogger(p.logger),
	).Run(ctx)
}
