package lexer

import (
	"fmt"
	"strconv"
)

// A TokenType is the type of a Token.
type TokenType uint32

const (
	// EOF marks the end of the stream.
	EOF TokenType = iota
	// EOL is an empty line.
	EOL
	// TEXT is a line of literal text.
	TEXT
	// HEADER looks like "== Title".
	HEADER
	// LIST looks like "** item" or "# item".
	LIST
	// ATTRIBUTES looks like "[arg, #tag, key=value, *subtype]".
	ATTRIBUTES
	// TITLE looks like ". Caption".
	TITLE
	// BLOCK is a fence like "----".
	BLOCK
	// COMMAND looks like "::toc:".
	COMMAND
	// CONTENT looks like "<< image:/uri".
	CONTENT
	// VARIABLE looks like ":name:value".
	VARIABLE
	// COMMENT looks like "// text".
	COMMENT
	// HORIZONTAL_RULE is "---".
	HORIZONTAL_RULE
)

// String returns a string representation of the TokenType.
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case EOL:
		return "EOL"
	case TEXT:
		return "TEXT"
	case HEADER:
		return "HEADER"
	case LIST:
		return "LIST"
	case ATTRIBUTES:
		return "ATTRIBUTES"
	case TITLE:
		return "TITLE"
	case BLOCK:
		return "BLOCK"
	case COMMAND:
		return "COMMAND"
	case CONTENT:
		return "CONTENT"
	case VARIABLE:
		return "VARIABLE"
	case COMMENT:
		return "COMMENT"
	case HORIZONTAL_RULE:
		return "HORIZONTAL_RULE"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// A Token is one classified line of the source.
//
// Prefix holds the structural part of the line: the "=" run of a header,
// the bullet run of a list item, the name of a command, variable or
// content type. Value holds the payload. Raw is the line exactly as it
// appears in the source, which is what blocks use for their contents.
// Escaped is set on TEXT lines that started with a backslash: their Value
// is literal text and must not be interpreted further.
type Token struct {
	Type    TokenType
	Prefix  string
	Value   string
	Raw     string
	Context Context
	Escaped bool
}

func (t Token) String() string {
	if t.Prefix != "" {
		return fmt.Sprintf("%s(%q, %q)", t.Type, t.Prefix, t.Value)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// SyntaxError is a malformed construct found in the source.
type SyntaxError struct {
	Context Context
	Msg     string

	// Token is the offending literal, when there is one
	Token string
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s: %q", e.Context, e.Msg, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Context, e.Msg)
}
