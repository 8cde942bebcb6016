package parser

import (
	"github.com/hesusruiz/mau/nodes"
)

// tocManager collects the headers and the places where the table of contents is rendered.
type tocManager struct {
	headers  []*nodes.HeaderNode
	commands []*nodes.TocNode
}

func (m *tocManager) addHeader(h *nodes.HeaderNode) {
	m.headers = append(m.headers, h)
}

func (m *tocManager) addCommand(n *nodes.TocNode) {
	m.commands = append(m.commands, n)
}

func (m *tocManager) update(other *tocManager) {
	m.headers = append(m.headers, other.headers...)
	m.commands = append(m.commands, other.commands...)
}

// process fills every toc node with a tree of entries that follows the header levels.
func (m *tocManager) process() {
	for _, cmd := range m.commands {
		buildToc(cmd, m.headers)
	}
}

func buildToc(toc *nodes.TocNode, headers []*nodes.HeaderNode) {

	type level struct {
		depth int
		node  nodes.Node
	}

	// The stack holds the chain of open entries, the toc itself at the bottom
	stack := []level{{depth: 0, node: toc}}

	for _, h := range headers {
		for len(stack) > 1 && stack[len(stack)-1].depth >= h.Level {
			stack = stack[:len(stack)-1]
		}

		entry := &nodes.TocEntryNode{Header: h}
		entry.Context = h.Context
		nodes.AppendChild(stack[len(stack)-1].node, entry)

		stack = append(stack, level{depth: h.Level, node: entry})
	}
}
