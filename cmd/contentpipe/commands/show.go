package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// ShowCmd prints the page payload of one document.
type ShowCmd struct {
	Type string `arg:"" help:"Content type (portfolio, service, city, comparison, glossary)"`
	Slug string `arg:"" help:"Document slug"`
}

func (s *ShowCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	t, err := content.ParseType(s.Type)
	if err != nil {
		return ferrors.ValidationError(err.Error()).WithContext("argument", "type").Build()
	}
	p, err := root.pipeline()
	if err != nil {
		return err
	}
	page, err := p.builder(p.cfg.OutputDir(), true).Page(ctx, t, s.Slug)
	if err != nil {
		return err
	}
	for _, d := range p.diagnostics.All() {
		slog.Warn(d.Message,
			logfields.ContentType(d.Type.String()),
			logfields.Slug(d.Slug),
			slog.String("kind", string(d.Kind)),
			slog.Any("fields", d.Fields))
	}
	return writeJSON(g.Out, page)
}
