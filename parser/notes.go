package parser

import (
	"fmt"

	"github.com/hesusruiz/mau/nodes"
)

// footnotesManager collects footnote mentions, footnote bodies and the
// places where the list of footnotes is rendered.
type footnotesManager struct {
	mentions []*nodes.FootnoteNode
	bodies   map[string]*nodes.FootnotesEntryNode
	commands []*nodes.FootnotesNode
}

func newFootnotesManager() *footnotesManager {
	return &footnotesManager{bodies: make(map[string]*nodes.FootnotesEntryNode)}
}

func (m *footnotesManager) addMention(n *nodes.FootnoteNode) {
	m.mentions = append(m.mentions, n)
}

func (m *footnotesManager) addBody(entry *nodes.FootnotesEntryNode) error {
	if _, exists := m.bodies[entry.Name]; exists {
		return fmt.Errorf("footnote %q already defined", entry.Name)
	}
	m.bodies[entry.Name] = entry
	return nil
}

func (m *footnotesManager) addCommand(n *nodes.FootnotesNode) {
	m.commands = append(m.commands, n)
}

func (m *footnotesManager) update(other *footnotesManager) error {
	m.mentions = append(m.mentions, other.mentions...)
	m.commands = append(m.commands, other.commands...)
	for _, entry := range other.bodies {
		if err := m.addBody(entry); err != nil {
			return err
		}
	}
	return nil
}

// process numbers the footnotes in order of first mention and fills the footnotes lists.
func (m *footnotesManager) process() error {
	var entries []*nodes.FootnotesEntryNode

	for _, mention := range m.mentions {
		entry, ok := m.bodies[mention.Name]
		if !ok {
			return &LinkError{ID: mention.Name, Msg: "footnote without definition"}
		}

		if entry.Number == 0 {
			entries = append(entries, entry)
			entry.Number = len(entries)
			entry.ReferenceAnchor = fmt.Sprintf("footnote-ref-%d", entry.Number)
			entry.ContentAnchor = fmt.Sprintf("footnote-def-%d", entry.Number)
		}

		mention.Number = entry.Number
		mention.ReferenceAnchor = entry.ReferenceAnchor
		mention.ContentAnchor = entry.ContentAnchor
	}

	for _, cmd := range m.commands {
		cmd.Entries = entries
		for _, entry := range entries {
			if entry.Parent() == nil {
				nodes.SetSlot(cmd, entry, "entries")
			}
		}
	}

	return nil
}

type referenceKey struct {
	contentType string
	name        string
}

type categoryKey struct {
	contentType string
	category    string
}

// referencesManager collects reference mentions and bodies, grouped by content type.
type referencesManager struct {
	mentions []*nodes.ReferenceNode
	bodies   map[referenceKey]*nodes.ReferencesEntryNode

	// order keeps the bodies in definition order
	order    []*nodes.ReferencesEntryNode
	commands []*nodes.ReferencesNode
}

func newReferencesManager() *referencesManager {
	return &referencesManager{bodies: make(map[referenceKey]*nodes.ReferencesEntryNode)}
}

func (m *referencesManager) addMention(n *nodes.ReferenceNode) {
	m.mentions = append(m.mentions, n)
}

func (m *referencesManager) addBody(entry *nodes.ReferencesEntryNode) error {
	key := referenceKey{entry.ContentType, entry.Name}
	if _, exists := m.bodies[key]; exists {
		return fmt.Errorf("reference %s %q already defined", entry.ContentType, entry.Name)
	}
	m.bodies[key] = entry
	m.order = append(m.order, entry)
	return nil
}

func (m *referencesManager) addCommand(n *nodes.ReferencesNode) {
	m.commands = append(m.commands, n)
}

func (m *referencesManager) update(other *referencesManager) error {
	m.mentions = append(m.mentions, other.mentions...)
	m.commands = append(m.commands, other.commands...)
	for _, entry := range other.order {
		if err := m.addBody(entry); err != nil {
			return err
		}
	}
	return nil
}

// process numbers the references per content type and category. Mentioned
// references are numbered first, in order of first mention, then the
// remaining ones in order of definition.
func (m *referencesManager) process() error {
	counters := make(map[categoryKey]int)
	var numbered []*nodes.ReferencesEntryNode

	assign := func(entry *nodes.ReferencesEntryNode) {
		if entry.Number != 0 {
			return
		}
		key := categoryKey{entry.ContentType, entry.Category}
		counters[key]++
		entry.Number = counters[key]

		id := Slugify(entry.ContentType)
		if entry.Category != "" {
			id = id + "-" + Slugify(entry.Category)
		}
		entry.ReferenceAnchor = fmt.Sprintf("ref-%s-%d", id, entry.Number)
		entry.ContentAnchor = fmt.Sprintf("cnt-%s-%d", id, entry.Number)
		numbered = append(numbered, entry)
	}

	for _, mention := range m.mentions {
		entry, ok := m.bodies[referenceKey{mention.ContentType, mention.Name}]
		if !ok {
			return &LinkError{ID: mention.ContentType + ":" + mention.Name, Msg: "reference without definition"}
		}
		assign(entry)

		mention.Category = entry.Category
		mention.Number = entry.Number
		mention.ReferenceAnchor = entry.ReferenceAnchor
		mention.ContentAnchor = entry.ContentAnchor
	}

	for _, entry := range m.order {
		assign(entry)
	}

	for _, cmd := range m.commands {
		cmd.Entries = nil
		for _, entry := range numbered {
			if cmd.ContentType != "" && entry.ContentType != cmd.ContentType {
				continue
			}
			cmd.Entries = append(cmd.Entries, entry)
			if entry.Parent() == nil {
				nodes.SetSlot(cmd, entry, "entries")
			}
		}
	}

	return nil
}
