// Package relations materializes by-slug references between documents.
//
// Each reference is resolved independently through a Getter and never
// recursively: the targets' own relations are not followed, so cyclic
// declarations (glossary terms pointing at each other) terminate.
package relations

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// Getter loads one document, reporting false when it does not resolve.
type Getter interface {
	Document(ctx context.Context, t content.Type, slug string) (*content.Entry, bool)
}

// Reporter receives references whose target did not resolve.
type Reporter interface {
	Dangling(ref content.RelationRef)
}

// Result holds the resolved targets in reference order and the references
// that could not be resolved.
type Result struct {
	Documents []*content.Entry
	Missing   []content.RelationRef
}

// MissingSlugs returns the target slugs of the unresolved references.
func (r Result) MissingSlugs() []string {
	out := make([]string, 0, len(r.Missing))
	for _, ref := range r.Missing {
		out = append(out, ref.Slug)
	}
	return out
}

// Resolver resolves references through a Getter.
type Resolver struct {
	get       Getter
	reporters []Reporter
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReporter adds a sink for dangling references. Only references with a
// known source document are reported.
func WithReporter(r Reporter) Option {
	return func(res *Resolver) {
		if r != nil {
			res.reporters = append(res.reporters, r)
		}
	}
}

// WithLogger sets the logger for dangling reference warnings.
func WithLogger(l *slog.Logger) Option {
	return func(res *Resolver) { res.logger = l }
}

// New returns a resolver reading through get.
func New(get Getter, opts ...Option) *Resolver {
	r := &Resolver{get: get, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Related resolves the references from declares towards content type to.
func (r *Resolver) Related(ctx context.Context, from *content.Entry, to content.Type) Result {
	if from == nil {
		return Result{}
	}
	var refs []content.RelationRef
	for _, ref := range content.Relations(from.Type, from.Slug, from.Frontmatter) {
		if ref.To == to {
			refs = append(refs, ref)
		}
	}
	return r.Resolve(ctx, refs)
}

// Slugs resolves bare slugs of type to that have no source document.
func (r *Resolver) Slugs(ctx context.Context, to content.Type, slugs []string) Result {
	refs := make([]content.RelationRef, 0, len(slugs))
	for _, s := range slugs {
		refs = append(refs, content.RelationRef{To: to, Slug: s})
	}
	return r.Resolve(ctx, refs)
}

// Resolve resolves refs in order. A target referenced more than once
// appears once, at its first position. Unresolved references are dropped
// from Documents and listed in Missing; Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, refs []content.RelationRef) Result {
	var res Result
	seen := make(map[content.Type]map[string]struct{})
	for _, ref := range refs {
		if seen[ref.To] == nil {
			seen[ref.To] = make(map[string]struct{})
		}
		if _, dup := seen[ref.To][ref.Slug]; dup {
			continue
		}
		seen[ref.To][ref.Slug] = struct{}{}

		if doc, ok := r.get.Document(ctx, ref.To, ref.Slug); ok {
			res.Documents = append(res.Documents, doc)
			continue
		}
		res.Missing = append(res.Missing, ref)
		if ref.From.Valid() {
			r.logger.Warn("Dangling relation",
				logfields.ContentType(ref.From.String()),
				logfields.Slug(ref.FromSlug),
				logfields.Field(ref.Field),
				slog.String("target_type", ref.To.String()),
				slog.String("target_slug", ref.Slug))
			for _, rep := range r.reporters {
				rep.Dangling(ref)
			}
		}
	}
	return res
}
