// Package schema validates raw front matter against the field rules
// of its content type and decodes it into the typed records of package content.
//
// Validation is structural: presence, type and non-emptiness. Values written
// for humans (prices such as "$1,500", dates as strings) are normalized here
// so later stages never re-parse text.
package schema

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

// Validator checks and decodes front matter for every content type.
type Validator struct{}

// NewValidator returns a Validator using the built-in schemas.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks raw against the schema of t and returns the typed front
// matter record (a content.*Frontmatter value). Failures are returned as *Error
// naming every offending field.
func (v *Validator) Validate(t content.Type, slug string, raw map[string]any) (any, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("validate %q: unknown content type %d", slug, int(t))
	}

	normalized, issues := Normalize(For(t), raw)
	if len(issues) > 0 {
		return nil, &Error{Type: t, Slug: slug, Issues: issues}
	}

	fm, err := decode(t, normalized)
	if err != nil {
		return nil, &Error{Type: t, Slug: slug, Issues: []Issue{{Path: "(document)", Problem: err.Error()}}}
	}
	return fm, nil
}

// Normalize applies s to raw, returning the coerced values and every issue
// found. Issues are sorted by path. Keys not named by the schema are dropped.
func Normalize(s Schema, raw map[string]any) (map[string]any, []Issue) {
	var issues []Issue
	out := normalizeObject(s.Fields, raw, "", &issues)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return out, issues
}

func normalizeObject(fields []Field, raw map[string]any, prefix string, issues *[]Issue) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		value, present := raw[f.Name]
		if !present || value == nil {
			if f.Required {
				*issues = append(*issues, Issue{Path: path, Problem: "required field missing"})
				if f.Kind == KindObject {
					normalizeObject(f.Fields, nil, path, issues)
				}
				continue
			}
			if def, ok := defaultFor(f); ok {
				out[f.Name] = def
			}
			continue
		}

		normalized, ok := normalizeValue(f, value, path, issues)
		if ok {
			out[f.Name] = normalized
		}
	}
	return out
}

func normalizeValue(f Field, value any, path string, issues *[]Issue) (any, bool) {
	fail := func(err error) (any, bool) {
		*issues = append(*issues, Issue{Path: path, Problem: err.Error()})
		return nil, false
	}

	switch f.Kind {
	case KindString:
		s, err := coerceString(value)
		if err != nil {
			return fail(err)
		}
		if f.NonEmpty && s == "" {
			return fail(fmt.Errorf("must not be empty"))
		}
		return s, true
	case KindNumber:
		n, err := coerceNumber(value)
		if err != nil {
			return fail(err)
		}
		return n, true
	case KindDate:
		d, err := coerceDate(value)
		if err != nil {
			return fail(err)
		}
		return d, true
	case KindBool:
		b, err := coerceBool(value)
		if err != nil {
			return fail(err)
		}
		return b, true
	case KindObject:
		m, ok := value.(map[string]any)
		if !ok {
			return fail(fmt.Errorf("expected object, got %s", describe(value)))
		}
		before := len(*issues)
		obj := normalizeObject(f.Fields, m, path, issues)
		return obj, len(*issues) == before
	case KindList:
		items, ok := value.([]any)
		if !ok {
			return fail(fmt.Errorf("expected list, got %s", describe(value)))
		}
		if f.NonEmpty && len(items) == 0 {
			return fail(fmt.Errorf("must contain at least one item"))
		}
		before := len(*issues)
		list := make([]any, 0, len(items))
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				*issues = append(*issues, Issue{Path: itemPath, Problem: "null list item"})
				continue
			}
			if normalized, ok := normalizeValue(*f.Elem, item, itemPath, issues); ok {
				list = append(list, normalized)
			}
		}
		return list, len(*issues) == before
	default:
		return fail(fmt.Errorf("unsupported field kind %s", f.Kind))
	}
}

func defaultFor(f Field) (any, bool) {
	if f.Default != nil {
		return f.Default, true
	}
	if f.Kind == KindList {
		return []any{}, true
	}
	return nil, false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// decode maps normalized values onto the typed record of t through a YAML
// node, so struct tags are the single source of field names.
func decode(t content.Type, normalized map[string]any) (any, error) {
	var node yaml.Node
	if err := node.Encode(normalized); err != nil {
		return nil, err
	}

	switch t {
	case content.Portfolio:
		return decodeInto[content.PortfolioFrontmatter](&node)
	case content.Service:
		return decodeInto[content.ServiceFrontmatter](&node)
	case content.City:
		return decodeInto[content.CityFrontmatter](&node)
	case content.Comparison:
		return decodeInto[content.ComparisonFrontmatter](&node)
	case content.Glossary:
		return decodeInto[content.GlossaryFrontmatter](&node)
	default:
		return nil, fmt.Errorf("unknown content type %d", int(t))
	}
}

func decodeInto[T content.Frontmatter](node *yaml.Node) (any, error) {
	var fm T
	if err := node.Decode(&fm); err != nil {
		return nil, err
	}
	return fm, nil
}
