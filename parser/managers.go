package parser

import (
	"github.com/hesusruiz/mau/lexer"
	"github.com/hesusruiz/mau/nodes"
)

// attributesManager buffers the attributes declared for the next block level node.
//
// push replaces the fields that are not empty and keeps the others, so that
// consecutive lines compose. pop returns the buffered attributes and resets
// the buffer: every node consumes only what was declared for it.
type attributesManager struct {
	current nodes.Attributes
}

func (m *attributesManager) push(args []string, kwargs map[string]string, tags []string, subtype string) {
	if len(args) > 0 {
		m.current.Args = args
	}
	if len(kwargs) > 0 {
		m.current.Kwargs = kwargs
	}
	if len(tags) > 0 {
		m.current.SetTags(tags)
	}
	if subtype != "" {
		m.current.Subtype = subtype
	}
}

func (m *attributesManager) pushArguments(a Arguments) {
	m.push(a.Args, a.Kwargs, a.Tags, a.Subtype)
}

func (m *attributesManager) pop() nodes.Attributes {
	result := m.current
	if result.Kwargs == nil {
		result.Kwargs = make(map[string]string)
	}
	m.current = nodes.Attributes{}
	return result
}

// titleManager buffers the caption line declared for the next block level node.
type titleManager struct {
	text    string
	context lexer.Context
	set     bool
}

func (m *titleManager) push(text string, ctx lexer.Context) {
	m.text = text
	m.context = ctx
	m.set = true
}

func (m *titleManager) pop() (string, lexer.Context, bool) {
	text, ctx, ok := m.text, m.context, m.set
	*m = titleManager{}
	return text, ctx, ok
}
