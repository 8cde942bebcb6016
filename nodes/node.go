// Package nodes defines the document tree built by the parser and consumed by the visitors.
//
// Every variant embeds Base, which carries the uniform metadata (attributes,
// source position, parent back-reference, slot name and children). Children
// are owned by their parent; the parent pointer is only a back-reference and
// is installed and cleared by AppendChild, InsertBefore, RemoveChild and SetSlot.
package nodes

import (
	"github.com/hesusruiz/mau/lexer"
)

// Node is implemented by every variant of the tree.
type Node interface {
	// NodeType returns the stable tag of the variant, e.g. "paragraph".
	NodeType() string

	// Meta gives access to the uniform metadata.
	Meta() *Base
}

// Slotted is implemented by nodes that hold nodes outside their children,
// like the title of a block or its secondary content.
type Slotted interface {
	Slots() []Node
}

// Base holds the metadata shared by all nodes.
type Base struct {
	Attributes

	// Context is the position in the source where the node was defined.
	Context lexer.Context

	// ParentPosition names the slot the node occupies in its parent
	// when it is not a plain child ("title", "secondary", ...).
	ParentPosition string

	parent   Node
	children []Node
}

// Meta returns the metadata itself, so that embedding Base is enough to implement Node.Meta.
func (b *Base) Meta() *Base {
	return b
}

// Parent returns the container of the node, or nil for roots.
func (b *Base) Parent() Node {
	return b.parent
}

// Children returns the ordered children of the node.
func (b *Base) Children() []Node {
	return b.children
}

// InsertBefore inserts newChild as a child of parent, immediately before oldChild
// in the sequence of parent's children. oldChild may be nil, in which case newChild
// is appended to the end of the children.
//
// It will panic if newChild already has a parent or oldChild is not a child of parent.
func InsertBefore(parent Node, newChild Node, oldChild Node) {
	if newChild.Meta().parent != nil {
		panic("InsertBefore called for an attached child Node")
	}

	p := parent.Meta()
	index := len(p.children)
	if oldChild != nil {
		index = indexOf(p.children, oldChild)
		if index == -1 {
			panic("InsertBefore called with a non-child reference Node")
		}
	}

	p.children = append(p.children, nil)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = newChild

	newChild.Meta().parent = parent
}

// AppendChild adds child as the last child of parent.
//
// It will panic if child already has a parent.
func AppendChild(parent Node, child Node) {
	if child.Meta().parent != nil {
		panic("AppendChild called for an already attached child Node")
	}
	p := parent.Meta()
	p.children = append(p.children, child)

	child.Meta().parent = parent
}

// AppendChildren appends all the nodes as children of parent.
func AppendChildren(parent Node, children ...Node) {
	for _, child := range children {
		AppendChild(parent, child)
	}
}

// RemoveChild removes child from the children of parent. Afterwards, child
// will have no parent and no slot.
//
// It will panic if child's parent is not parent.
func RemoveChild(parent Node, child Node) {
	c := child.Meta()
	if c.parent != parent {
		panic("RemoveChild called for a non-child Node")
	}

	p := parent.Meta()
	if index := indexOf(p.children, child); index != -1 {
		p.children = append(p.children[:index], p.children[index+1:]...)
	}

	// Make the child alone in the universe ...
	c.parent = nil
	c.ParentPosition = ""
}

// ReparentChildren moves all of src's children to the end of dst's children.
func ReparentChildren(dst Node, src Node) {
	children := append([]Node(nil), src.Meta().children...)
	for _, child := range children {
		RemoveChild(src, child)
		AppendChild(dst, child)
	}
}

// SetSlot attaches child to parent outside the children list, in the named position.
// A nil child is ignored.
func SetSlot(parent Node, child Node, position string) {
	if child == nil {
		return
	}
	c := child.Meta()
	if c.parent != nil && c.parent != parent {
		panic("SetSlot called for a Node attached to another parent")
	}
	c.parent = parent
	c.ParentPosition = position
}

// Walk visits n and then, depth first, its slots and children.
// If fn returns false the descendants of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	if s, ok := n.(Slotted); ok {
		for _, slot := range s.Slots() {
			Walk(slot, fn)
		}
	}
	for _, child := range n.Meta().children {
		Walk(child, fn)
	}
}

func indexOf(list []Node, n Node) int {
	for i, item := range list {
		if item == n {
			return i
		}
	}
	return -1
}
