package visitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/nodes"
	"github.com/hesusruiz/mau/parser"
)

func parse(t *testing.T, source string) *nodes.DocumentNode {
	t.Helper()
	doc, err := parser.Parse(source, "test.mau")
	require.NoError(t, err)
	return doc
}

// typeEmitter renders every node as its type
var typeEmitter = EmitterFunc(func(n nodes.Node, r *Record) (any, error) {
	return n.NodeType(), nil
})

func TestVisitNil(t *testing.T) {
	v := New(nil)

	result, err := v.Visit(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, result)

	var header *nodes.HeaderNode
	result, err = v.Visit(header)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, result)
}

func TestVisitList(t *testing.T) {
	v := New(typeEmitter)
	list := []nodes.Node{&nodes.TextNode{Value: "a"}, &nodes.VerbatimNode{Value: "b"}}

	result, err := v.VisitList(list, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"text", "verbatim"}, result)

	sep := "-"
	result, err = v.VisitList(list, &sep)
	require.NoError(t, err)
	assert.Equal(t, "text-verbatim", result)

	// Records cannot be joined
	result, err = New(nil).VisitList(list, &sep)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestVisitSource(t *testing.T) {
	doc := parse(t, `[source, somelang, callouts=":"]
----
import sys
import os:imp:

print(os.environ["HOME"]):env:@:
----
imp: This is an import
env: Environment variables are paramount
`)

	r, err := New(nil).Record(doc.Children()[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"source.somelang"}, r.Templates)
	assert.Equal(t, "source", r.Data["type"])
	assert.Equal(t, "somelang", r.Data["language"])
	assert.Equal(t, []string{"import sys", "import os", "", `print(os.environ["HOME"]):env`}, r.Data["code"])
	assert.Equal(t, "import sys\nimport os\n\nprint(os.environ[\"HOME\"]):env", r.Data["content"])
	assert.Equal(t, []any{nil, "imp", nil, nil}, r.Data["markers"])
	assert.Equal(t, []int{3}, r.Data["highlights"])

	lines := r.Data["lines"].([]any)
	require.Len(t, lines, 4)
	assert.Equal(t, map[string]any{"code": "import os", "marker": "imp", "highlight": false}, lines[1])
	assert.Equal(t, true, lines[3].(map[string]any)["highlight"])

	assert.Equal(t, []any{
		map[string]any{"marker": "imp", "value": "This is an import"},
		map[string]any{"marker": "env", "value": "Environment variables are paramount"},
	}, r.Data["callouts"])
}

func TestBlockTemplates(t *testing.T) {
	tests := []struct {
		source string
		want   []string
	}{
		{source: "[engine=someengine, *someblock]\n----\nx\n----\n", want: []string{"block.someengine"}},
		{source: "[quote, engine=raw]\n----\nx\n----\n", want: []string{"block.quote.raw", "block.quote", "block.raw"}},
		{source: "[quote]\n----\nx\n----\n", want: []string{"block.quote"}},
		{source: "----\nx\n----\n", want: nil},
	}

	for _, tt := range tests {
		doc := parse(t, tt.source)
		r, err := New(nil).Record(doc.Children()[0])
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.Templates, tt.source)
	}
}

func TestVisitBlockData(t *testing.T) {
	doc := parse(t, ". Title\n[quote, Someone, #famous]\n----\nText\n----\nSecondary\n")

	result, err := New(typeEmitter).Record(doc.Children()[0])
	require.NoError(t, err)

	assert.Equal(t, "quote", result.Data["blocktype"])
	assert.Equal(t, "sentence", result.Data["title"])
	assert.Equal(t, "paragraph", result.Data["content"])
	assert.Equal(t, "paragraph", result.Data["secondary_content"])
	assert.Equal(t, []string{"famous"}, result.Data["tags"])
	assert.Equal(t, map[string]string{"attribution": "Someone"}, result.Data["kwargs"])
}

func TestJoinWith(t *testing.T) {
	e := env.New()
	e.Set("mau.visitor.join_with.document", "||")

	doc := parse(t, "one\n\ntwo\n")

	r, err := New(typeEmitter, WithEnvironment(e)).Record(doc)
	require.NoError(t, err)
	assert.Equal(t, "paragraph||paragraph", r.Data["content"])

	r, err = New(typeEmitter).Record(doc)
	require.NoError(t, err)
	assert.Equal(t, "paragraph\nparagraph", r.Data["content"])
}

func TestTocExcludeTag(t *testing.T) {
	doc := parse(t, "::toc:exclude_tag=skip\n\n= A\n\n[#skip]\n= B\n\n== B1\n\n= C\n")

	result, err := New(nil).Visit(doc.Children()[0])
	require.NoError(t, err)

	data := result.(map[string]any)["data"].(map[string]any)
	entries := data["entries"].([]any)
	require.Len(t, entries, 2)

	first := entries[0].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "A", first["header"].(map[string]any)["value"])
	second := entries[1].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "C", second["header"].(map[string]any)["value"])
}

func TestReferencesExcludeTag(t *testing.T) {
	doc := parse(t, `[reference, book, a]
----
A
----

[reference, book, b, #draft]
----
B
----

::references:book, exclude_tag=draft
`)

	r, err := New(typeEmitter).Record(doc.Children()[0])
	require.NoError(t, err)
	assert.Equal(t, "book", r.Data["content_type"])
	assert.Equal(t, "references_entry", r.Data["entries"])
}

type unknownNode struct {
	nodes.Base
}

func (n *unknownNode) NodeType() string { return "unknown" }

func TestUnknownNode(t *testing.T) {
	doc := &nodes.DocumentNode{}
	nodes.AppendChild(doc, &unknownNode{})

	_, err := New(nil).Visit(doc)

	var ve *VisitorError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "unknown", ve.NodeType)
}

// checkLeaves fails if a node reference is left in the visit result.
func checkLeaves(t *testing.T, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, item := range v {
			checkLeaves(t, item)
		}
	case []any:
		for _, item := range v {
			checkLeaves(t, item)
		}
	case nodes.Node:
		t.Errorf("node %s left in the visit result", v.NodeType())
	case nil, string, int, bool, []string, []int, map[string]string:
	default:
		t.Errorf("unexpected value %T in the visit result", v)
	}
}

func TestVisitLeavesNoNodes(t *testing.T) {
	doc := parse(t, `= Title

::toc:

. Caption
[source, go]
----
fmt.Println("hi"):a:
----
a: print

* item *bold* [link](https://example.com)
** nested [header](title) [footnote](n)

[footnote, n]
----
The note
----

<< image:/cat.png

::footnotes:
`)

	result, err := New(nil).Visit(doc)
	require.NoError(t, err)
	checkLeaves(t, result)
}
