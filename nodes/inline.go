package nodes

// Node types of the inline variants.
const (
	TypeSentence    = "sentence"
	TypeText        = "text"
	TypeVerbatim    = "verbatim"
	TypeStyle       = "style"
	TypeClass       = "class"
	TypeMacro       = "macro"
	TypeMacroLink   = "macro.link"
	TypeMacroImage  = "macro.image"
	TypeMacroHeader = "macro.header"
)

// Style values.
const (
	StyleStar       = "star"
	StyleUnderscore = "underscore"
	StyleCaret      = "caret"
	StyleTilde      = "tilde"
)

// SentenceNode is a sequence of inline nodes.
type SentenceNode struct {
	Base
}

func (n *SentenceNode) NodeType() string { return TypeSentence }

// TextNode is plain text.
type TextNode struct {
	Base
	Value string
}

func (n *TextNode) NodeType() string { return TypeText }

// VerbatimNode is text that is not interpreted.
type VerbatimNode struct {
	Base
	Value string
}

func (n *VerbatimNode) NodeType() string { return TypeVerbatim }

// StyleNode applies a style to its children.
type StyleNode struct {
	Base
	Value string
}

func (n *StyleNode) NodeType() string { return TypeStyle }

// ClassNode applies a list of classes to its children.
type ClassNode struct {
	Base
	Classes []string
}

func (n *ClassNode) NodeType() string { return TypeClass }

// MacroNode is a macro without a specific variant. The arguments are stored in Args and Kwargs.
type MacroNode struct {
	Base
	Name string
}

func (n *MacroNode) NodeType() string { return TypeMacro }

// MacroLinkNode is a link to an external target. The children are the link text.
type MacroLinkNode struct {
	Base
	Target string
}

func (n *MacroLinkNode) NodeType() string { return TypeMacroLink }

// MacroImageNode is an inline image.
type MacroImageNode struct {
	Base
	URI     string
	AltText string
	Width   string
	Height  string
}

func (n *MacroImageNode) NodeType() string { return TypeMacroImage }

// MacroHeaderNode is an internal link to a header.
// Header is nil until links are resolved.
type MacroHeaderNode struct {
	Base
	HeaderID string
	Header   *HeaderNode
}

func (n *MacroHeaderNode) NodeType() string { return TypeMacroHeader }

// TextOf returns the concatenation of the text contained in n and its descendants.
func TextOf(n Node) string {
	var result []byte
	Walk(n, func(node Node) bool {
		switch t := node.(type) {
		case *TextNode:
			result = append(result, t.Value...)
		case *VerbatimNode:
			result = append(result, t.Value...)
		}
		return true
	})
	return string(result)
}
