package content

import (
	"fmt"
	"strings"
)

// Type identifies a document kind. The set is closed.
type Type int

const (
	Portfolio Type = iota + 1
	Service
	City
	Comparison
	Glossary
)

// AllTypes returns every content type in declaration order.
func AllTypes() []Type {
	return []Type{Portfolio, Service, City, Comparison, Glossary}
}

// String returns the canonical lower-case name used in config and logs.
func (t Type) String() string {
	switch t {
	case Portfolio:
		return "portfolio"
	case Service:
		return "service"
	case City:
		return "city"
	case Comparison:
		return "comparison"
	case Glossary:
		return "glossary"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Label returns a human readable name for page titles.
func (t Type) Label() string {
	switch t {
	case Portfolio:
		return "project"
	case Service:
		return "service"
	case City:
		return "location"
	case Comparison:
		return "comparison"
	case Glossary:
		return "glossary term"
	default:
		return "page"
	}
}

// DefaultDir returns the storage sub-path of the type relative to the content root.
func (t Type) DefaultDir() string {
	switch t {
	case Portfolio:
		return "portfolio"
	case Service:
		return "services"
	case City:
		return "cities"
	case Comparison:
		return "comparisons"
	case Glossary:
		return "glossary"
	default:
		return ""
	}
}

// DefaultRoute returns the dynamic route template pages of this type render under.
func (t Type) DefaultRoute() string {
	switch t {
	case Portfolio:
		return "/portfolio/[slug]"
	case Service:
		return "/services/[slug]"
	case City:
		return "/locations/[slug]"
	case Comparison:
		return "/compare/[slug]"
	case Glossary:
		return "/glossary/[slug]"
	default:
		return ""
	}
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	switch t {
	case Portfolio, Service, City, Comparison, Glossary:
		return true
	default:
		return false
	}
}

// ParseType resolves a type from its canonical name. Plural forms are accepted
// because the CLI and config files tend to use them.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portfolio", "portfolios", "project", "projects":
		return Portfolio, nil
	case "service", "services":
		return Service, nil
	case "city", "cities", "location", "locations":
		return City, nil
	case "comparison", "comparisons", "compare":
		return Comparison, nil
	case "glossary", "term", "terms":
		return Glossary, nil
	default:
		return 0, fmt.Errorf("unknown content type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so types serialize by name.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid content type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
