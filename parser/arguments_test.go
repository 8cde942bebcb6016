package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Arguments
	}{
		{name: "empty", input: "", want: Arguments{}},
		{name: "positional", input: "a, b", want: Arguments{Args: []string{"a", "b"}}},
		{
			name:  "all kinds",
			input: "source, python, #tag1, key=val, *sub, #tag2",
			want: Arguments{
				Args:    []string{"source", "python"},
				Kwargs:  map[string]string{"key": "val"},
				Tags:    []string{"tag1", "tag2"},
				Subtype: "sub",
			},
		},
		{name: "quoted comma", input: `"a, b", c`, want: Arguments{Args: []string{"a, b", "c"}}},
		{name: "quoted kwarg", input: `callouts=":", title="Hello, world"`, want: Arguments{Kwargs: map[string]string{"callouts": ":", "title": "Hello, world"}}},
		{name: "escaped quote", input: `"say \"hi\""`, want: Arguments{Args: []string{`say "hi"`}}},
		{name: "quoted hash is positional", input: `"#notatag"`, want: Arguments{Args: []string{"#notatag"}}},
		{name: "value with equal", input: "key=a=b", want: Arguments{Kwargs: map[string]string{"key": "a=b"}}},
		{name: "empty items are skipped", input: "a,, b,", want: Arguments{Args: []string{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArguments(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgumentsErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{input: `a, "b`, err: errUnterminatedQuote},
		{input: `"a" b`, err: errTextAfterQuote},
		{input: `a"b"`, err: errQuoteInValue},
		{input: `=value`, err: errEmptyKey},
		{input: `a key=value`, err: errInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseArguments(tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestAttributesManager(t *testing.T) {
	var m attributesManager

	// An empty pop gives empty defaults
	attrs := m.pop()
	assert.True(t, attrs.IsEmpty())

	m.push([]string{"a"}, nil, []string{"t"}, "")
	m.push(nil, map[string]string{"k": "v"}, nil, "sub")

	attrs = m.pop()
	assert.Equal(t, []string{"a"}, attrs.Args)
	assert.Equal(t, map[string]string{"k": "v"}, attrs.Kwargs)
	assert.Equal(t, []string{"t"}, attrs.Tags)
	assert.Equal(t, "sub", attrs.Subtype)

	// A pop resets the buffer
	attrs = m.pop()
	assert.True(t, attrs.IsEmpty())

	// Non empty fields are replaced
	m.push([]string{"a"}, nil, nil, "")
	m.push([]string{"b"}, nil, nil, "")
	assert.Equal(t, []string{"b"}, m.pop().Args)
}
