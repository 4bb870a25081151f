// Package pagemeta produces the title and description of each dynamic page.
// Generation never fails: a slug that does not resolve gets a not-found
// fallback, which the page layer pairs with its 404.
package pagemeta

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/routes"
)

// maxDescription is the description length search engines display.
const maxDescription = 160

// Resolver looks documents up the same way pages do.
type Resolver interface {
	Document(ctx context.Context, t content.Type, slug string) (*content.Entry, bool)
}

// Site holds site-wide values.
type Site struct {
	Name    string
	BaseURL string
}

// Metadata is the head data of one page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical,omitempty"`
	Image       string `json:"image,omitempty"`
	NotFound    bool   `json:"notFound,omitempty"`
}

// Generator builds Metadata.
type Generator struct {
	resolver Resolver
	site     Site
}

// New returns a generator resolving through r.
func New(r Resolver, site Site) *Generator {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	return &Generator{resolver: r, site: site}
}

// Generate returns the metadata of the page rendered for slug under tpl.
func (g *Generator) Generate(ctx context.Context, tpl routes.Template, slug string) Metadata {
	e, ok := g.resolver.Document(ctx, tpl.Type, slug)
	if !ok {
		return NotFound(tpl.Type, g.site.Name)
	}
	return g.ForEntry(tpl, e)
}

// ForEntry returns the metadata of an already resolved document.
func (g *Generator) ForEntry(tpl routes.Template, e *content.Entry) Metadata {
	title, description := content.TitleOf(e.Frontmatter)
	if title == "" {
		title = label(e.Type)
	}
	m := Metadata{
		Title:       withSite(title, g.site.Name),
		Description: truncate(description, maxDescription),
	}
	if g.site.BaseURL != "" {
		m.Canonical = g.site.BaseURL + tpl.Path(e.Slug)
	}
	if p, ok := e.Frontmatter.(content.PortfolioFrontmatter); ok {
		m.Image = p.Image
	}
	return m
}

// NotFound is the fallback metadata for type t.
func NotFound(t content.Type, siteName string) Metadata {
	l := label(t)
	return Metadata{
		Title:       withSite(l+" Not Found", siteName),
		Description: "The requested " + t.Label() + " could not be found.",
		NotFound:    true,
	}
}

func label(t content.Type) string {
	return cases.Title(language.English).String(t.Label())
}

func withSite(title, site string) string {
	if site == "" {
		return title
	}
	return title + " | " + site
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n-1])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
