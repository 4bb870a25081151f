package content

import "git.home.luguber.info/inful/contentpipe/internal/mdx"

// RawDocument is one file as read by the content store: unvalidated front
// matter and the uncompiled body. It never leaves the pipeline.
type RawDocument struct {
	Slug        string
	Type        Type
	Path        string
	Frontmatter map[string]any
	Body        []byte
}

// Entry is a validated, compiled document whose front matter is one of the
// Frontmatter records held by value.
type Entry struct {
	Slug        string              `json:"slug"`
	Type        Type                `json:"contentType"`
	Path        string              `json:"-"`
	Frontmatter any                 `json:"frontmatter"`
	Body        mdx.CompiledContent `json:"compiledBody"`
}

// Title returns the display title of the entry.
func (e *Entry) Title() string {
	title, _ := TitleOf(e.Frontmatter)
	return title
}

// Document is the typed view of an Entry.
type Document[T Frontmatter] struct {
	Slug        string              `json:"slug"`
	Type        Type                `json:"contentType"`
	Frontmatter T                   `json:"frontmatter"`
	Body        mdx.CompiledContent `json:"compiledBody"`
}

// As converts e to its typed view. It reports false when e is nil or holds a
// different front matter record.
func As[T Frontmatter](e *Entry) (*Document[T], bool) {
	if e == nil {
		return nil, false
	}
	fm, ok := e.Frontmatter.(T)
	if !ok {
		return nil, false
	}
	return &Document[T]{Slug: e.Slug, Type: e.Type, Frontmatter: fm, Body: e.Body}, true
}

// AsAll converts a list of entries, dropping any that do not hold T.
func AsAll[T Frontmatter](entries []*Entry) []*Document[T] {
	out := make([]*Document[T], 0, len(entries))
	for _, e := range entries {
		if d, ok := As[T](e); ok {
			out = append(out, d)
		}
	}
	return out
}
