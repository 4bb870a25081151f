package commands

import (
	"context"
	"fmt"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory; overrides build.output_dir" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile; overrides metrics.textfile" type:"path"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	p, err := root.pipeline()
	if err != nil {
		return err
	}
	out := p.cfg.OutputDir()
	if b.Output != "" {
		out = b.Output
	}
	metricsFile := p.cfg.MetricsTextfile()
	if b.MetricsFile != "" {
		metricsFile = b.MetricsFile
	}

	report, err := p.builder(out, false).Run(ctx)
	p.writeMetrics(metricsFile)
	if report != nil {
		_, _ = fmt.Fprintln(g.Out, report.Summary())
	}
	return err
}
