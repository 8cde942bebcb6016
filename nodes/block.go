package nodes

import (
	"github.com/emirpasic/gods/sets/treeset"
)

// Node types of the block level variants.
const (
	TypeDocument       = "document"
	TypeParagraph      = "paragraph"
	TypeHeader         = "header"
	TypeList           = "list"
	TypeListItem       = "list_item"
	TypeBlock          = "block"
	TypeSource         = "source"
	TypeRaw            = "raw"
	TypeCallout        = "callout"
	TypeCalloutsEntry  = "callouts_entry"
	TypeContent        = "content"
	TypeContentImage   = "content_image"
	TypeHorizontalRule = "horizontal_rule"
	TypeToc            = "toc"
	TypeTocEntry       = "toc_entry"
)

// DefaultBlocktype is the blocktype of blocks that do not declare one.
const DefaultBlocktype = "default"

// DocumentNode is the root of a parsed document.
type DocumentNode struct {
	Base
}

func (n *DocumentNode) NodeType() string { return TypeDocument }

// ParagraphNode wraps a run of text lines. Its only child is a SentenceNode.
type ParagraphNode struct {
	Base
}

func (n *ParagraphNode) NodeType() string { return TypeParagraph }

// HeaderNode is a section heading.
type HeaderNode struct {
	Base
	Value  string
	Level  int
	Anchor string
}

func (n *HeaderNode) NodeType() string { return TypeHeader }

// ListNode is an ordered or unordered list. MainNode is false for nested lists.
type ListNode struct {
	Base
	Ordered  bool
	MainNode bool
}

func (n *ListNode) NodeType() string { return TypeList }

// ListItemNode holds the text of the item and, optionally, nested lists.
type ListItemNode struct {
	Base
	Level int
}

func (n *ListItemNode) NodeType() string { return TypeListItem }

// BlockNode is a fenced block. Its children are the primary content.
type BlockNode struct {
	Base
	Blocktype    string
	Engine       string
	Preprocessor string

	SecondaryContent []Node
	Title            Node
}

func (n *BlockNode) NodeType() string { return TypeBlock }

func (n *BlockNode) Slots() []Node {
	return withTitle(n.Title, n.SecondaryContent)
}

// SetTitle attaches the caption of the block.
func (n *BlockNode) SetTitle(title Node) {
	n.Title = title
	SetSlot(n, title, "title")
}

// AppendSecondary adds nodes to the secondary content of the block.
func (n *BlockNode) AppendSecondary(nodes ...Node) {
	for _, node := range nodes {
		SetSlot(n, node, "secondary")
		n.SecondaryContent = append(n.SecondaryContent, node)
	}
}

// RawNode is a single line of verbatim text.
type RawNode struct {
	Base
	Value string
}

func (n *RawNode) NodeType() string { return TypeRaw }

// CalloutNode marks a line of code with a label.
type CalloutNode struct {
	Base
	Line   int
	Marker string
}

func (n *CalloutNode) NodeType() string { return TypeCallout }

// CalloutsEntryNode is the explanation of a callout marker.
type CalloutsEntryNode struct {
	Base
	Marker string
	Value  string
}

func (n *CalloutsEntryNode) NodeType() string { return TypeCalloutsEntry }

// SourceNode is a block of code, with its callouts and highlighted lines.
type SourceNode struct {
	Base
	Blocktype    string
	Language     string
	Preprocessor string
	Delimiter    string
	Highlight    string
	Classes      []string

	Code     []*RawNode
	Markers  []*CalloutNode
	Callouts []*CalloutsEntryNode

	// Highlights is the sorted set of highlighted line indexes
	Highlights *treeset.Set

	Title Node
}

// NewSourceNode creates an empty source node with the default settings.
func NewSourceNode() *SourceNode {
	return &SourceNode{
		Blocktype:  DefaultBlocktype,
		Language:   "text",
		Delimiter:  ":",
		Highlight:  "@",
		Highlights: treeset.NewWithIntComparator(),
	}
}

func (n *SourceNode) NodeType() string { return TypeSource }

func (n *SourceNode) Slots() []Node {
	slots := make([]Node, 0, len(n.Code)+len(n.Markers)+len(n.Callouts)+1)
	if n.Title != nil {
		slots = append(slots, n.Title)
	}
	for _, c := range n.Code {
		slots = append(slots, c)
	}
	for _, m := range n.Markers {
		slots = append(slots, m)
	}
	for _, c := range n.Callouts {
		slots = append(slots, c)
	}
	return slots
}

// SetTitle attaches the caption of the block.
func (n *SourceNode) SetTitle(title Node) {
	n.Title = title
	SetSlot(n, title, "title")
}

// AppendCode adds a line of code.
func (n *SourceNode) AppendCode(line *RawNode) {
	SetSlot(n, line, "code")
	n.Code = append(n.Code, line)
}

// AppendMarker adds a callout marker.
func (n *SourceNode) AppendMarker(marker *CalloutNode) {
	SetSlot(n, marker, "markers")
	n.Markers = append(n.Markers, marker)
}

// AppendCallout adds an entry of the callouts list.
func (n *SourceNode) AppendCallout(entry *CalloutsEntryNode) {
	SetSlot(n, entry, "callouts")
	n.Callouts = append(n.Callouts, entry)
}

// HighlightedLines returns the highlighted line indexes in increasing order.
func (n *SourceNode) HighlightedLines() []int {
	result := make([]int, 0, n.Highlights.Size())
	for _, v := range n.Highlights.Values() {
		result = append(result, v.(int))
	}
	return result
}

// ContentNode includes external content in the document.
// For "mau" includes, the children are the nodes of the included document.
type ContentNode struct {
	Base
	ContentType string
	URIArgs     []string
	URIKwargs   map[string]string

	Title Node
}

func (n *ContentNode) NodeType() string { return TypeContent }

func (n *ContentNode) Slots() []Node {
	return withTitle(n.Title, nil)
}

// SetTitle attaches the caption of the content.
func (n *ContentNode) SetTitle(title Node) {
	n.Title = title
	SetSlot(n, title, "title")
}

// ContentImageNode includes an image.
type ContentImageNode struct {
	Base
	URI     string
	AltText string
	Classes []string

	Title Node
}

func (n *ContentImageNode) NodeType() string { return TypeContentImage }

func (n *ContentImageNode) Slots() []Node {
	return withTitle(n.Title, nil)
}

// SetTitle attaches the caption of the image.
func (n *ContentImageNode) SetTitle(title Node) {
	n.Title = title
	SetSlot(n, title, "title")
}

// HorizontalRuleNode is a thematic break.
type HorizontalRuleNode struct {
	Base
}

func (n *HorizontalRuleNode) NodeType() string { return TypeHorizontalRule }

// TocNode is the table of contents. Its children are the top level TocEntryNodes.
type TocNode struct {
	Base
}

func (n *TocNode) NodeType() string { return TypeToc }

// TocEntryNode points to a header. Its children are the entries of the nested headers.
type TocEntryNode struct {
	Base
	Header *HeaderNode
}

func (n *TocEntryNode) NodeType() string { return TypeTocEntry }

func withTitle(title Node, rest []Node) []Node {
	if title == nil {
		return rest
	}
	return append([]Node{title}, rest...)
}
