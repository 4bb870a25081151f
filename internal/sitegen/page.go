package sitegen

import (
	"context"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/mdx"
	"git.home.luguber.info/inful/contentpipe/internal/pagemeta"
	"git.home.luguber.info/inful/contentpipe/internal/routes"
)

// Page is the payload written for one pre-rendered route.
type Page struct {
	Route       string              `json:"route"`
	Template    string              `json:"template"`
	Type        content.Type        `json:"contentType"`
	Slug        string              `json:"slug"`
	Metadata    pagemeta.Metadata   `json:"metadata"`
	Frontmatter any                 `json:"frontmatter"`
	Body        mdx.CompiledContent `json:"compiledBody"`
	Related     []RelatedGroup      `json:"related,omitempty"`
}

// RelatedGroup lists the resolved targets of one content type, in the order
// the author declared them.
type RelatedGroup struct {
	Type  content.Type  `json:"contentType"`
	Items []RelatedItem `json:"items"`
}

// RelatedItem is a link to another page.
type RelatedItem struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Route string `json:"route,omitempty"`
}

// page assembles the payload of e rendered under tpl.
func (b *Builder) page(ctx context.Context, tpl routes.Template, e *content.Entry) Page {
	p := Page{
		Route:       tpl.Path(e.Slug),
		Template:    tpl.Pattern,
		Type:        e.Type,
		Slug:        e.Slug,
		Metadata:    b.meta.ForEntry(tpl, e),
		Frontmatter: e.Frontmatter,
		Body:        e.Body,
	}
	for _, to := range targetTypes(e) {
		res := b.facade.Related(ctx, e, to)
		group := RelatedGroup{Type: to, Items: make([]RelatedItem, 0, len(res.Documents))}
		target, routed := b.enum.Template(to)
		for _, d := range res.Documents {
			item := RelatedItem{Slug: d.Slug, Title: d.Title()}
			if routed {
				item.Route = target.Path(d.Slug)
			}
			group.Items = append(group.Items, item)
		}
		p.Related = append(p.Related, group)
	}
	return p
}

// targetTypes returns the distinct content types e refers to, in the order
// their first reference appears.
func targetTypes(e *content.Entry) []content.Type {
	var out []content.Type
	seen := make(map[content.Type]bool)
	for _, ref := range content.Relations(e.Type, e.Slug, e.Frontmatter) {
		if !seen[ref.To] {
			seen[ref.To] = true
			out = append(out, ref.To)
		}
	}
	return out
}

// Page resolves one document and assembles the payload its route would be
// written with. The error is the classified reason the document does not
// resolve.
func (b *Builder) Page(ctx context.Context, t content.Type, slug string) (Page, error) {
	tpl, ok := b.enum.Template(t)
	if !ok {
		return Page{}, ferrors.NotFoundError("content type has no route template").
			WithContext("type", t.String()).
			Build()
	}
	e, err := b.facade.Lookup(ctx, t, slug)
	if err != nil {
		return Page{}, err
	}
	return b.page(ctx, tpl, e), nil
}
