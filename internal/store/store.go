// Package store reads content documents from a directory tree: one
// sub-directory per content type, one file per document named <slug>.<ext>.
// It performs read-only access and never caches, so every call reflects the
// files as they are now.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/frontmatter"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

var (
	// ErrNotFound is returned (wrapped) when no file maps to the requested slug.
	ErrNotFound = errors.New("document not found")
	// ErrSlugCollision is returned (wrapped) when several files map to one slug.
	ErrSlugCollision = errors.New("several files map to the same slug")
)

// DefaultExtensions are the document file extensions recognised by default.
var DefaultExtensions = []string{"mdx", "md"}

// Store is the read side used by the rest of the pipeline.
type Store interface {
	ListSlugs(ctx context.Context, t content.Type) ([]string, error)
	ReadRaw(ctx context.Context, t content.Type, slug string) (*content.RawDocument, error)
}

// FSStore implements Store over an fs.FS.
type FSStore struct {
	fsys   fs.FS
	dirs   map[content.Type]string
	exts   []string
	logger *slog.Logger
}

// Option configures an FSStore.
type Option func(*FSStore)

// WithDir overrides the sub-directory of one content type.
func WithDir(t content.Type, dir string) Option {
	return func(s *FSStore) { s.dirs[t] = path.Clean(dir) }
}

// WithExtensions replaces the recognised file extensions (without dots).
func WithExtensions(exts ...string) Option {
	return func(s *FSStore) {
		s.exts = nil
		for _, e := range exts {
			if e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), "."); e != "" {
				s.exts = append(s.exts, e)
			}
		}
	}
}

// WithLogger sets the logger used for skipped-file warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *FSStore) { s.logger = l }
}

// New returns a store rooted at fsys. Directories default to each type's
// DefaultDir.
func New(fsys fs.FS, opts ...Option) *FSStore {
	s := &FSStore{
		fsys:   fsys,
		dirs:   make(map[content.Type]string, len(content.AllTypes())),
		exts:   DefaultExtensions,
		logger: slog.Default(),
	}
	for _, t := range content.AllTypes() {
		s.dirs[t] = t.DefaultDir()
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.exts) == 0 {
		s.exts = DefaultExtensions
	}
	return s
}

// Dir returns the directory documents of type t are read from.
func (s *FSStore) Dir(t content.Type) string {
	return s.dirs[t]
}

// ListSlugs returns the sorted slugs of all documents of type t. Files whose
// name does not yield a URL-safe slug are skipped with a warning. A slug
// claimed by several files is listed once; reading it fails.
func (s *FSStore) ListSlugs(ctx context.Context, t content.Type) ([]string, error) {
	idx, err := s.index(ctx, t)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(idx))
	for slug := range idx {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

// ReadRaw reads and splits the document of type t named slug.
func (s *FSStore) ReadRaw(ctx context.Context, t content.Type, slug string) (*content.RawDocument, error) {
	if !content.ValidSlug(slug) {
		return nil, notFound(t, slug)
	}
	idx, err := s.index(ctx, t)
	if err != nil {
		return nil, err
	}
	paths := idx[slug]
	switch len(paths) {
	case 0:
		return nil, notFound(t, slug)
	case 1:
	default:
		return nil, ferrors.ValidationError("slug is not unique").
			WithCause(ErrSlugCollision).
			WithContext("content_type", t.String()).
			WithContext("slug", slug).
			WithContext("paths", strings.Join(paths, ", ")).
			Build()
	}

	p := paths[0]
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Removed between listing and reading.
			return nil, notFound(t, slug)
		}
		return nil, ferrors.FileSystemError("failed to read document").
			WithCause(err).
			WithContext("path", p).
			Build()
	}

	fields, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, ferrors.SchemaError("front matter could not be parsed").
			WithCause(err).
			WithContext("content_type", t.String()).
			WithContext("slug", slug).
			WithContext("path", p).
			Build()
	}
	if fields == nil {
		fields = map[string]any{}
	}

	return &content.RawDocument{
		Slug:        slug,
		Type:        t,
		Path:        p,
		Frontmatter: fields,
		Body:        body,
	}, nil
}

// index maps each slug of type t to the files deriving it.
func (s *FSStore) index(ctx context.Context, t content.Type) (map[string][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, ok := s.dirs[t]
	if !ok || !t.Valid() {
		return nil, ferrors.InternalError(fmt.Sprintf("no directory configured for content type %s", t)).Build()
	}

	pattern := path.Join(dir, "*."+s.extPattern())
	matches, err := doublestar.Glob(s.fsys, pattern)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to list documents").
			WithCause(err).
			WithContext("pattern", pattern).
			Build()
	}

	lower := cases.Lower(language.Und)
	idx := make(map[string][]string, len(matches))
	for _, m := range matches {
		if info, err := fs.Stat(s.fsys, m); err != nil || info.IsDir() {
			continue
		}
		base := path.Base(m)
		slug := lower.String(strings.TrimSuffix(base, path.Ext(base)))
		if !content.ValidSlug(slug) {
			if !strings.HasPrefix(base, ".") && !strings.HasPrefix(base, "_") {
				s.logger.Warn("Skipping document with invalid slug",
					logfields.ContentType(t.String()),
					logfields.Path(m),
					logfields.Slug(slug))
			}
			continue
		}
		idx[slug] = append(idx[slug], m)
	}
	for slug := range idx {
		sort.Strings(idx[slug])
	}
	return idx, nil
}

func (s *FSStore) extPattern() string {
	if len(s.exts) == 1 {
		return s.exts[0]
	}
	return "{" + strings.Join(s.exts, ",") + "}"
}

func notFound(t content.Type, slug string) error {
	return ferrors.NotFoundError("document not found").
		WithCause(ErrNotFound).
		WithContext("content_type", t.String()).
		WithContext("slug", slug).
		Build()
}
