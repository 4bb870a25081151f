package schema

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

// ErrSchema matches every *Error with errors.Is.
var ErrSchema = errors.New("front matter schema violation")

// Issue is one field that failed validation.
type Issue struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	return i.Path + ": " + i.Problem
}

// Error reports every field of a document that failed validation.
type Error struct {
	Type   content.Type
	Slug   string
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("invalid %s front matter in %q: %s", e.Type, e.Slug, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrSchema) hold for every schema error.
func (e *Error) Is(target error) bool {
	return target == ErrSchema
}

// Fields returns the offending field paths in report order.
func (e *Error) Fields() []string {
	out := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		out[i] = issue.Path
	}
	return out
}

// HasField reports whether path is among the offending fields.
func (e *Error) HasField(path string) bool {
	for _, issue := range e.Issues {
		if issue.Path == path {
			return true
		}
	}
	return false
}
