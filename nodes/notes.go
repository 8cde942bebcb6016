package nodes

// Node types of footnotes and references.
const (
	TypeFootnote        = "footnote"
	TypeFootnotesEntry  = "footnotes_entry"
	TypeFootnotes       = "footnotes"
	TypeReference       = "reference"
	TypeReferencesEntry = "references_entry"
	TypeReferences      = "references"
)

// FootnoteNode is the mark of a footnote in the text.
type FootnoteNode struct {
	Base
	Name            string
	Number          int
	ReferenceAnchor string
	ContentAnchor   string
}

func (n *FootnoteNode) NodeType() string { return TypeFootnote }

// FootnotesEntryNode is a footnote in the list of footnotes.
// Its children are the body of the footnote.
type FootnotesEntryNode struct {
	Base
	Name            string
	Number          int
	ReferenceAnchor string
	ContentAnchor   string
}

func (n *FootnotesEntryNode) NodeType() string { return TypeFootnotesEntry }

// FootnotesNode is the place where the list of footnotes is rendered.
type FootnotesNode struct {
	Base
	Entries []*FootnotesEntryNode
}

func (n *FootnotesNode) NodeType() string { return TypeFootnotes }

func (n *FootnotesNode) Slots() []Node {
	slots := make([]Node, 0, len(n.Entries))
	for _, e := range n.Entries {
		if e.Parent() == Node(n) {
			slots = append(slots, e)
		}
	}
	return slots
}

// ReferenceNode is the mark of a reference in the text.
type ReferenceNode struct {
	Base
	ContentType     string
	Category        string
	Name            string
	Number          int
	ReferenceAnchor string
	ContentAnchor   string
}

func (n *ReferenceNode) NodeType() string { return TypeReference }

// ReferencesEntryNode is a reference in the list of references.
// Its children are the body of the reference.
type ReferencesEntryNode struct {
	Base
	ContentType     string
	Category        string
	Name            string
	Number          int
	ReferenceAnchor string
	ContentAnchor   string
}

func (n *ReferencesEntryNode) NodeType() string { return TypeReferencesEntry }

// ReferencesNode is the place where the references of a content type are rendered.
type ReferencesNode struct {
	Base
	ContentType string
	Entries     []*ReferencesEntryNode
}

func (n *ReferencesNode) NodeType() string { return TypeReferences }

func (n *ReferencesNode) Slots() []Node {
	slots := make([]Node, 0, len(n.Entries))
	for _, e := range n.Entries {
		if e.Parent() == Node(n) {
			slots = append(slots, e)
		}
	}
	return slots
}
