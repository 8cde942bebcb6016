package parser

import (
	"fmt"

	"github.com/hesusruiz/mau/lexer"
)

// ParseError is a malformed construct found while parsing.
// The lexer reports its errors with the same type.
type ParseError = lexer.SyntaxError

// LinkError is raised when internal links cannot be resolved:
// duplicate header ids, or links to ids that no header declares.
type LinkError struct {
	ID  string
	Msg string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: %q", e.Msg, e.ID)
}

// fail aborts the parsing. The error is recovered in Parse.
func fail(ctx lexer.Context, token string, format string, args ...any) {
	panic(&ParseError{Context: ctx, Msg: fmt.Sprintf(format, args...), Token: token})
}
