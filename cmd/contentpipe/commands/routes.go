package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// RoutesCmd prints the static params of each route template.
type RoutesCmd struct {
	Type  string `help:"Only list routes of this content type"`
	Paths bool   `help:"Print concrete paths, one per line, instead of JSON"`
}

func (r *RoutesCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	p, err := root.pipeline()
	if err != nil {
		return err
	}
	rs := p.routes.EnumerateAll(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	templates := rs.Templates()
	if r.Type != "" {
		t, err := content.ParseType(r.Type)
		if err != nil {
			return ferrors.ValidationError(err.Error()).WithContext("flag", "--type").Build()
		}
		tpl, _ := p.routes.Template(t)
		if !r.Paths {
			return writeJSON(g.Out, rs.Params(tpl.Pattern))
		}
		templates = templates[:0]
		templates = append(templates, tpl)
	}
	if !r.Paths {
		return writeJSON(g.Out, rs)
	}
	for _, tpl := range templates {
		for _, slug := range rs.Slugs(tpl.Pattern) {
			_, _ = fmt.Fprintln(g.Out, tpl.Path(slug))
		}
	}
	return nil
}
