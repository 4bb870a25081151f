package mdx

import (
	"errors"
	"fmt"
)

// ErrCompile matches every *Error with errors.Is.
var ErrCompile = errors.New("mdx compile failed")

// Error describes why a body could not be compiled. Line is 1-based and zero
// when the failure is not tied to a position.
type Error struct {
	Line      int
	Component string
	Reason    string
}

func (e *Error) Error() string {
	msg := e.Reason
	if e.Component != "" {
		msg = fmt.Sprintf("<%s>: %s", e.Component, msg)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Is makes errors.Is(err, ErrCompile) hold for every compile error.
func (e *Error) Is(target error) bool {
	return target == ErrCompile
}
