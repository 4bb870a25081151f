package relations

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/diagnostics"
)

// mapGetter serves documents from a map and counts lookups.
type mapGetter struct {
	mu    sync.Mutex
	docs  map[content.Type]map[string]*content.Entry
	calls map[string]int
}

func newMapGetter(entries ...*content.Entry) *mapGetter {
	g := &mapGetter{docs: map[content.Type]map[string]*content.Entry{}, calls: map[string]int{}}
	for _, e := range entries {
		if g.docs[e.Type] == nil {
			g.docs[e.Type] = map[string]*content.Entry{}
		}
		g.docs[e.Type][e.Slug] = e
	}
	return g
}

func (g *mapGetter) Document(_ context.Context, t content.Type, slug string) (*content.Entry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[t.String()+"/"+slug]++
	e, ok := g.docs[t][slug]
	return e, ok
}

func slugsOf(entries []*content.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Slug)
	}
	return out
}

func portfolio(slug string) *content.Entry {
	return &content.Entry{Slug: slug, Type: content.Portfolio, Frontmatter: content.PortfolioFrontmatter{Title: slug}}
}

func TestRelated_PreservesOrderAndReportsMissing(t *testing.T) {
	get := newMapGetter(portfolio("acme-redesign"), portfolio("beta"), portfolio("gamma"))
	diags := diagnostics.NewCollector()
	r := New(get, WithReporter(diags))

	svc := &content.Entry{Slug: "web-development", Type: content.Service, Frontmatter: content.ServiceFrontmatter{
		Title:              "Web",
		RelatedCaseStudies: []string{"gamma", "ghost-client", "acme-redesign", "gamma", "beta"},
	}}
	res := r.Related(context.Background(), svc, content.Portfolio)
	require.Equal(t, []string{"gamma", "acme-redesign", "beta"}, slugsOf(res.Documents))
	require.Equal(t, []string{"ghost-client"}, res.MissingSlugs())
	require.Equal(t, 1, get.calls["portfolio/gamma"], "duplicates are looked up once")

	all := diags.All()
	require.Len(t, all, 1)
	require.Equal(t, diagnostics.KindDanglingRelation, all[0].Kind)
	require.Equal(t, "web-development", all[0].Slug)
	require.Equal(t, []string{"relatedCaseStudies"}, all[0].Fields)
	require.Equal(t, "ghost-client", all[0].Target.Slug)
}

func TestRelated_FiltersByTargetType(t *testing.T) {
	svc := &content.Entry{Slug: "seo", Type: content.Service, Frontmatter: content.ServiceFrontmatter{Title: "SEO"}}
	get := newMapGetter(portfolio("p1"), svc)
	r := New(get)

	city := &content.Entry{Slug: "oslo", Type: content.City, Frontmatter: content.CityFrontmatter{
		Title:              "Oslo",
		NearbyServices:     []string{"seo"},
		RelatedCaseStudies: []string{"p1"},
	}}
	require.Equal(t, []string{"seo"}, slugsOf(r.Related(context.Background(), city, content.Service).Documents))
	require.Equal(t, []string{"p1"}, slugsOf(r.Related(context.Background(), city, content.Portfolio).Documents))
	require.Empty(t, r.Related(context.Background(), city, content.Glossary).Documents)
	require.Empty(t, r.Related(context.Background(), nil, content.Portfolio).Documents)
}

func TestRelated_CyclesDoNotRecurse(t *testing.T) {
	a := &content.Entry{Slug: "a", Type: content.Glossary, Frontmatter: content.GlossaryFrontmatter{Term: "A", RelatedTerms: []string{"b"}}}
	b := &content.Entry{Slug: "b", Type: content.Glossary, Frontmatter: content.GlossaryFrontmatter{Term: "B", RelatedTerms: []string{"a", "b"}}}
	get := newMapGetter(a, b)
	r := New(get)

	res := r.Related(context.Background(), b, content.Glossary)
	require.Equal(t, []string{"a", "b"}, slugsOf(res.Documents))
	require.Empty(t, res.Missing)
	require.Equal(t, 1, get.calls["glossary/a"])
	require.Equal(t, 1, get.calls["glossary/b"])
}

func TestSlugs_WithoutSourceAreNotReported(t *testing.T) {
	diags := diagnostics.NewCollector()
	r := New(newMapGetter(portfolio("acme-redesign")), WithReporter(diags))

	res := r.Slugs(context.Background(), content.Portfolio, []string{"acme-redesign", "ghost-client"})
	require.Equal(t, []string{"acme-redesign"}, slugsOf(res.Documents))
	require.Equal(t, []string{"ghost-client"}, res.MissingSlugs())
	require.Empty(t, diags.All())

	empty := r.Slugs(context.Background(), content.Portfolio, nil)
	require.Empty(t, empty.Documents)
	require.Empty(t, empty.Missing)
}
