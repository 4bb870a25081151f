package content

// RelationRef is a by-slug pointer from one document to another. It is
// looked up, never owned: a target that does not exist is dropped by the
// resolver and reported, not treated as an error of the referring document.
type RelationRef struct {
	From     Type   `json:"from"`
	FromSlug string `json:"fromSlug"`
	Field    string `json:"field"`
	To       Type   `json:"to"`
	Slug     string `json:"slug"`
}

// Relations lists the references declared by a front matter record, in
// author order, field by field.
func Relations(from Type, fromSlug string, fm any) []RelationRef {
	var refs []RelationRef
	add := func(field string, to Type, slugs []string) {
		for _, s := range slugs {
			refs = append(refs, RelationRef{From: from, FromSlug: fromSlug, Field: field, To: to, Slug: s})
		}
	}

	switch v := fm.(type) {
	case PortfolioFrontmatter:
		// Case studies are relation targets only.
	case ServiceFrontmatter:
		add("relatedCaseStudies", Portfolio, v.RelatedCaseStudies)
	case CityFrontmatter:
		add("nearbyServices", Service, v.NearbyServices)
		add("relatedCaseStudies", Portfolio, v.RelatedCaseStudies)
	case ComparisonFrontmatter:
		add("relatedServices", Service, v.RelatedServices)
	case GlossaryFrontmatter:
		add("relatedTerms", Glossary, v.RelatedTerms)
	}
	return refs
}

// RelatedSlugs returns the slugs e declares towards content type to.
func RelatedSlugs(e *Entry, to Type) []string {
	var out []string
	for _, ref := range Relations(e.Type, e.Slug, e.Frontmatter) {
		if ref.To == to {
			out = append(out, ref.Slug)
		}
	}
	return out
}
