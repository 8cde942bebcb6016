package lexer

import (
	"fmt"
	"strings"
)

// Context is a position in a source text.
// Lines and columns are 1-based; the zero Context means "unknown position".
type Context struct {
	Source string
	Line   int
	Column int
}

func (c Context) String() string {
	source := c.Source
	if source == "" {
		source = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", source, c.Line, c.Column)
}

// Buffer owns the source text and a forward-only cursor on its lines.
type Buffer struct {
	source string
	lines  []string

	// next is the index of the next line to be read
	next int

	// firstLine is the line number of lines[0] in the original source
	firstLine int
}

// NewBuffer creates a buffer for text. source is a tag used in diagnostics,
// normally the name of the file being processed.
func NewBuffer(text string, source string) *Buffer {
	return NewBufferAt(text, Context{Source: source, Line: 1, Column: 1})
}

// NewBufferAt creates a buffer whose first line is reported at the position start.
// It is used for sub-documents (block contents, included files) so that
// diagnostics point at the enclosing source.
func NewBufferAt(text string, start Context) *Buffer {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")

	var lines []string
	if len(text) > 0 {
		lines = strings.Split(text, "\n")
	}

	firstLine := start.Line
	if firstLine < 1 {
		firstLine = 1
	}

	return &Buffer{
		source:    start.Source,
		lines:     lines,
		firstLine: firstLine,
	}
}

// Source returns the origin tag of the buffer.
func (b *Buffer) Source() string {
	return b.source
}

// Len returns the number of lines in the buffer.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// AtEOF reports whether all lines have been read.
func (b *Buffer) AtEOF() bool {
	return b.next >= len(b.lines)
}

// ReadLine returns the next line and advances the cursor.
func (b *Buffer) ReadLine() (string, bool) {
	if b.AtEOF() {
		return "", false
	}
	line := b.lines[b.next]
	b.next++
	return line, true
}

// Context returns the position of the last line read, at column 1.
func (b *Buffer) Context() Context {
	return b.ContextAt(1)
}

// ContextAt returns the position of the given column of the last line read.
func (b *Buffer) ContextAt(column int) Context {
	line := b.next - 1
	if line < 0 {
		line = 0
	}
	return Context{
		Source: b.source,
		Line:   b.firstLine + line,
		Column: column,
	}
}
