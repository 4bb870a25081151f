package query

import (
	"context"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/mdx"
)

// Get resolves one document of the type whose front matter is T.
func Get[T content.Frontmatter](ctx context.Context, f *Facade, slug string) (*content.Document[T], bool) {
	e, ok := f.Document(ctx, content.TypeOf[T](), slug)
	if !ok {
		return nil, false
	}
	return content.As[T](e)
}

// All resolves every document of the type whose front matter is T, sorted
// by slug.
func All[T content.Frontmatter](ctx context.Context, f *Facade) []*content.Document[T] {
	return content.AsAll[T](f.AllDocuments(ctx, content.TypeOf[T]()))
}

// RelatedTo resolves the documents of type T that e references.
func RelatedTo[T content.Frontmatter](ctx context.Context, f *Facade, e *content.Entry) []*content.Document[T] {
	return content.AsAll[T](f.Related(ctx, e, content.TypeOf[T]()).Documents)
}

// GetPortfolioProject returns the case study named slug.
func (f *Facade) GetPortfolioProject(ctx context.Context, slug string) (*content.Document[content.PortfolioFrontmatter], bool) {
	return Get[content.PortfolioFrontmatter](ctx, f, slug)
}

// GetAllPortfolioProjects returns every case study that resolves.
func (f *Facade) GetAllPortfolioProjects(ctx context.Context) []*content.Document[content.PortfolioFrontmatter] {
	return All[content.PortfolioFrontmatter](ctx, f)
}

// GetServicePage returns the service page named slug.
func (f *Facade) GetServicePage(ctx context.Context, slug string) (*content.Document[content.ServiceFrontmatter], bool) {
	return Get[content.ServiceFrontmatter](ctx, f, slug)
}

// GetRelatedPortfolioProjects resolves case study slugs in the given order.
// Slugs that do not resolve are left out and returned as missing.
func (f *Facade) GetRelatedPortfolioProjects(ctx context.Context, slugs []string) (docs []*content.Document[content.PortfolioFrontmatter], missing []string) {
	res := f.RelatedSlugs(ctx, content.Portfolio, slugs)
	return content.AsAll[content.PortfolioFrontmatter](res.Documents), res.MissingSlugs()
}

// CompiledBody wraps compiled output the way page components consume it.
type CompiledBody struct {
	Content mdx.CompiledContent `json:"content"`
}

// CompileMDXContent compiles a body that does not belong to a stored
// document.
func (f *Facade) CompileMDXContent(ctx context.Context, body string) (CompiledBody, error) {
	c, err := f.Compile(ctx, []byte(body))
	if err != nil {
		return CompiledBody{}, err
	}
	return CompiledBody{Content: c}, nil
}
