package commands

import (
	"context"
	"fmt"
)

// CheckCmd resolves every routed document like a build does, without
// writing output.
type CheckCmd struct {
	JSON bool `help:"Print the diagnostics as JSON instead of a summary"`
}

func (c *CheckCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	p, err := root.pipeline()
	if err != nil {
		return err
	}
	report, err := p.builder(p.cfg.OutputDir(), true).Run(ctx)
	if report != nil {
		if c.JSON {
			if werr := writeJSON(g.Out, p.diagnostics); werr != nil {
				return werr
			}
		} else {
			_, _ = fmt.Fprintln(g.Out, report.Summary())
		}
	}
	return err
}
