package mdx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// Component is one entry of the allow-list: a name authors may use as a tag
// in MDX bodies, the HTML element it renders to and the props it accepts.
type Component struct {
	Name    string
	Element string
	Props   []string
	// Void components take no children and must not be closed.
	Void bool
}

var componentName = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// renderElements are the elements a component may render to. The sanitizer
// policy admits exactly these plus the usual prose elements.
var renderElements = []string{"aside", "div", "section", "figure", "figcaption", "span", "details", "summary", "mark", "blockquote"}

// Registry is an immutable component allow-list. It is built by the caller
// and passed to the compiler; content never extends it.
type Registry struct {
	components map[string]Component
	version    string
}

// NewRegistry validates components and builds a registry.
func NewRegistry(components ...Component) (*Registry, error) {
	r := &Registry{components: make(map[string]Component, len(components))}
	for _, c := range components {
		if !componentName.MatchString(c.Name) {
			return nil, fmt.Errorf("component %q: name must start with an upper-case letter and contain only letters and digits", c.Name)
		}
		if _, dup := r.components[c.Name]; dup {
			return nil, fmt.Errorf("component %q registered twice", c.Name)
		}
		if c.Element == "" {
			c.Element = "div"
		}
		if !slices.Contains(renderElements, c.Element) {
			return nil, fmt.Errorf("component %q: element %q is not one of %s", c.Name, c.Element, strings.Join(renderElements, ", "))
		}
		props := make([]string, 0, len(c.Props))
		for _, p := range c.Props {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" || strings.ContainsAny(p, " \t\"'=<>/{}") || p == "component" {
				return nil, fmt.Errorf("component %q: invalid prop name %q", c.Name, p)
			}
			props = append(props, p)
		}
		sort.Strings(props)
		c.Props = slices.Compact(props)
		r.components[c.Name] = c
	}
	r.version = r.digest()
	return r, nil
}

// MustRegistry is NewRegistry for static tables; it panics on invalid input.
func MustRegistry(components ...Component) *Registry {
	r, err := NewRegistry(components...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the allowed component with the given name.
func (r *Registry) Lookup(name string) (Component, bool) {
	if r == nil {
		return Component{}, false
	}
	c, ok := r.components[name]
	return c, ok
}

// Names returns the allowed component names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Version is a stable digest of the allow-list. Compiled output may be
// reused for any registry with the same version.
func (r *Registry) Version() string {
	if r == nil {
		return "empty"
	}
	return r.version
}

func (r *Registry) digest() string {
	h := sha256.New()
	for _, name := range r.Names() {
		c := r.components[name]
		_, _ = fmt.Fprintf(h, "%s|%s|%t|%s\n", c.Name, c.Element, c.Void, strings.Join(c.Props, ","))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// DefaultComponents is the allow-list used when configuration does not
// provide one.
func DefaultComponents() []Component {
	return []Component{
		{Name: "Callout", Element: "aside", Props: []string{"type", "title"}},
		{Name: "Metric", Element: "div", Props: []string{"label", "value"}, Void: true},
		{Name: "Testimonial", Element: "figure", Props: []string{"author", "role"}},
		{Name: "Badge", Element: "span", Props: []string{"tone"}},
		{Name: "Steps", Element: "section"},
		{Name: "Step", Element: "div", Props: []string{"title"}},
		{Name: "Details", Element: "details", Props: []string{"summary"}},
	}
}
