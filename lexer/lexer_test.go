package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func types(tokens []Token) []TokenType {
	result := make([]TokenType, 0, len(tokens))
	for _, tok := range tokens {
		result = append(result, tok.Type)
	}
	return result
}

func TestLexLineClassification(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantType   TokenType
		wantPrefix string
		wantValue  string
	}{
		{name: "empty line", input: "   ", wantType: EOL},
		{name: "text", input: "Some text", wantType: TEXT, wantValue: "Some text"},
		{name: "header", input: "== Subtitle", wantType: HEADER, wantPrefix: "==", wantValue: "Subtitle"},
		{name: "header without space is text", input: "==Subtitle", wantType: TEXT, wantValue: "==Subtitle"},
		{name: "unordered list", input: "** item", wantType: LIST, wantPrefix: "**", wantValue: "item"},
		{name: "ordered list", input: "# item", wantType: LIST, wantPrefix: "#", wantValue: "item"},
		{name: "attributes", input: "[source, python, #tag, key=val, *sub]", wantType: ATTRIBUTES, wantValue: "source, python, #tag, key=val, *sub"},
		{name: "macro line is text", input: "[link](https://example.com)", wantType: TEXT, wantValue: "[link](https://example.com)"},
		{name: "title", input: ". A caption", wantType: TITLE, wantValue: "A caption"},
		{name: "ellipsis is text", input: "...and then", wantType: TEXT, wantValue: "...and then"},
		{name: "command", input: "::toc:exclude_tag=notoc", wantType: COMMAND, wantPrefix: "toc", wantValue: "exclude_tag=notoc"},
		{name: "content", input: "<< image:/path/img.png", wantType: CONTENT, wantPrefix: "image", wantValue: "/path/img.png"},
		{name: "variable", input: ":name:value", wantType: VARIABLE, wantPrefix: "name", wantValue: "value"},
		{name: "flag variable", input: ":+flag:", wantType: VARIABLE, wantPrefix: "+flag", wantValue: ""},
		{name: "comment", input: "// a comment", wantType: COMMENT, wantValue: "a comment"},
		{name: "horizontal rule", input: "---", wantType: HORIZONTAL_RULE},
		{name: "escaped header", input: `\= not a header`, wantType: TEXT, wantValue: "= not a header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input, "test")
			require.NoError(t, err)
			require.Len(t, tokens, 2)

			assert.Equal(t, tt.wantType, tokens[0].Type)
			assert.Equal(t, tt.wantPrefix, tokens[0].Prefix)
			assert.Equal(t, tt.wantValue, tokens[0].Value)
			assert.Equal(t, tt.input, tokens[0].Raw)
			assert.Equal(t, EOF, tokens[1].Type)
		})
	}
}

func TestLexBlockContentIsVerbatim(t *testing.T) {
	source := `[source]
----
= not a header
// not a comment
\escaped
----
callout: text`

	tokens, err := Lex(source, "test")
	require.NoError(t, err)

	assert.Equal(t, []TokenType{ATTRIBUTES, BLOCK, TEXT, TEXT, TEXT, BLOCK, TEXT, EOF}, types(tokens))
	assert.Equal(t, "= not a header", tokens[2].Value)
	assert.Equal(t, "// not a comment", tokens[3].Value)
	assert.Equal(t, `\escaped`, tokens[4].Value)
	assert.False(t, tokens[4].Escaped)
}

func TestLexEscapedLine(t *testing.T) {
	tokens, err := Lex("\\*not bold*\n*bold*\n", "test")
	require.NoError(t, err)

	assert.Equal(t, []TokenType{TEXT, TEXT, EOF}, types(tokens))
	assert.True(t, tokens[0].Escaped)
	assert.Equal(t, "*not bold*", tokens[0].Value)
	assert.Equal(t, 2, tokens[0].Context.Column)
	assert.False(t, tokens[1].Escaped)
}

func TestLexNestedFences(t *testing.T) {
	source := `======
----
inner
----
======`

	tokens, err := Lex(source, "test")
	require.NoError(t, err)

	// The inner fences do not match the outer one, so they are plain content
	assert.Equal(t, []TokenType{BLOCK, TEXT, TEXT, TEXT, BLOCK, EOF}, types(tokens))
	assert.Equal(t, "----", tokens[1].Value)
}

func TestLexUnmatchedFence(t *testing.T) {
	_, err := Lex("----\nsome content\n", "doc.mau")

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "unmatched block fence", se.Msg)
	assert.Equal(t, "----", se.Token)
	assert.Equal(t, Context{Source: "doc.mau", Line: 1, Column: 1}, se.Context)
	assert.Equal(t, `doc.mau:1:1: unmatched block fence: "----"`, se.Error())
}

func TestLexMultilineComment(t *testing.T) {
	tokens, err := Lex("before\n////\nhidden\n== hidden\n////\nafter", "test")
	require.NoError(t, err)

	assert.Equal(t, []TokenType{TEXT, TEXT, EOF}, types(tokens))
	assert.Equal(t, "after", tokens[1].Value)
	assert.Equal(t, 6, tokens[1].Context.Line)

	_, err = Lex("////\nnever closed", "test")
	assert.Error(t, err)
}

func TestLexContexts(t *testing.T) {
	tokens, err := Lex("= Title\n\nText", "doc.mau")
	require.NoError(t, err)

	assert.Equal(t, Context{Source: "doc.mau", Line: 1, Column: 3}, tokens[0].Context)
	assert.Equal(t, 2, tokens[1].Context.Line)
	assert.Equal(t, 3, tokens[2].Context.Line)
	assert.Equal(t, 4, tokens[3].Context.Line)
}

func TestBufferAt(t *testing.T) {
	buf := NewBufferAt("a\nb\n", Context{Source: "doc.mau", Line: 10})

	assert.Equal(t, 2, buf.Len())

	line, ok := buf.ReadLine()
	require.True(t, ok)
	assert.Equal(t, "a", line)
	assert.Equal(t, 10, buf.Context().Line)

	assert.False(t, buf.AtEOF())

	line, ok = buf.ReadLine()
	require.True(t, ok)
	assert.Equal(t, "b", line)
	assert.Equal(t, 11, buf.Context().Line)
	assert.True(t, buf.AtEOF())

	_, ok = buf.ReadLine()
	assert.False(t, ok)
}

func TestIsFence(t *testing.T) {
	assert.True(t, IsFence("----"))
	assert.True(t, IsFence("######  "))
	assert.False(t, IsFence("---"))
	assert.False(t, IsFence("--=-"))
}
