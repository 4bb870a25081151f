// Package diagnostics collects the problems found while resolving content
// during one build: dangling relations, skipped documents and fatal ones.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindDanglingRelation Kind = "dangling_relation"
	KindSchema           Kind = "schema"
	KindCompile          Kind = "compile"
	KindSlugCollision    Kind = "slug_collision"
	KindRead             Kind = "read"
)

// Level says whether a diagnostic fails the build.
type Level string

const (
	LevelWarning Level = "warning"
	LevelFatal   Level = "fatal"
)

// Diagnostic is one reported problem. Fields names the offending front
// matter fields when known.
type Diagnostic struct {
	Kind    Kind         `json:"kind"`
	Level   Level        `json:"level"`
	Type    content.Type `json:"contentType"`
	Slug    string       `json:"slug"`
	Fields  []string     `json:"fields,omitempty"`
	Target  *Target      `json:"target,omitempty"`
	Message string       `json:"message"`
}

// Target is the missing end of a dangling relation.
type Target struct {
	Type content.Type `json:"contentType"`
	Slug string       `json:"slug"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s/%s", d.Level, d.Kind, d.Type, d.Slug)
	if len(d.Fields) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(d.Fields, ", "))
	}
	if d.Target != nil {
		fmt.Fprintf(&b, " -> %s/%s", d.Target.Type, d.Target.Slug)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

func (d Diagnostic) key() string {
	target := ""
	if d.Target != nil {
		target = d.Target.Type.String() + "/" + d.Target.Slug
	}
	return strings.Join([]string{string(d.Kind), d.Type.String(), d.Slug, strings.Join(d.Fields, ","), target}, "|")
}

// Collector accumulates diagnostics from concurrent workers. Reporting the
// same problem twice keeps one entry, so memoized and repeated lookups do
// not inflate the report.
type Collector struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	items []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// Add records d unless an identical problem was already recorded.
func (c *Collector) Add(d Diagnostic) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	k := d.key()
	if _, dup := c.seen[k]; dup {
		return
	}
	c.seen[k] = struct{}{}
	c.items = append(c.items, d)
}

// Dangling records a relation whose target did not resolve.
func (c *Collector) Dangling(ref content.RelationRef) {
	c.Add(Diagnostic{
		Kind:    KindDanglingRelation,
		Level:   LevelWarning,
		Type:    ref.From,
		Slug:    ref.FromSlug,
		Fields:  []string{ref.Field},
		Target:  &Target{Type: ref.To, Slug: ref.Slug},
		Message: "referenced document does not exist or failed to load",
	})
}

// All returns a sorted copy of the recorded diagnostics.
func (c *Collector) All() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	c.mu.Unlock()
	Sort(out)
	return out
}

// Fatal returns the sorted fatal diagnostics.
func (c *Collector) Fatal() []Diagnostic {
	var out []Diagnostic
	for _, d := range c.All() {
		if d.Level == LevelFatal {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics at each level.
func (c *Collector) Count() (warnings, fatal int) {
	for _, d := range c.All() {
		if d.Level == LevelFatal {
			fatal++
		} else {
			warnings++
		}
	}
	return warnings, fatal
}

// Reset discards everything recorded so far.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[string]struct{})
	c.items = nil
}

// Sort orders diagnostics by type, slug, kind, fields and target.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Slug != b.Slug {
			return a.Slug < b.Slug
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.key() < b.key()
	})
}

// MarshalJSON writes the sorted diagnostics as a JSON array.
func (c *Collector) MarshalJSON() ([]byte, error) {
	all := c.All()
	if all == nil {
		all = []Diagnostic{}
	}
	return json.Marshal(all)
}
