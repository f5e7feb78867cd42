// Package dom defines the interface between the template machinery and the
// document it renders into.
//
// The template machinery never depends on a concrete document
// implementation. Package htmldom provides one backed by an HTML parse tree,
// which is used in tests and by the command-line host.
package dom

import "src.circular.dev/pkg/events"

// NodeType is the type of a Node.
type NodeType int

// Possible values of NodeType.
const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return "unknown"
}

// Attr is an attribute of an element.
type Attr struct {
	Name  string
	Value string
}

// Node is a node of a document.
type Node interface {
	Type() NodeType
	// Name returns the tag name of an element, "#text" for text nodes and
	// "#comment" for comments.
	Name() string
	// OwnerDocument returns the document the node belongs to.
	OwnerDocument() Document
	// Clone returns a deep copy of the node that has no parent and no event
	// handlers.
	Clone() Node

	// Attributes returns the attributes of an element in document order.
	Attributes() []Attr
	GetAttribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)

	Parent() Node
	// ChildNodes returns all children; Children returns only the child
	// elements.
	ChildNodes() []Node
	Children() []Node
	AppendChild(child Node)
	// InsertBefore inserts child before ref, which must be a child of the
	// node. If ref is nil, child is appended. A child that already has a
	// parent is moved.
	InsertBefore(child, ref Node)
	ReplaceChild(child, old Node)
	RemoveChild(child Node)
	// Clear removes all children.
	Clear()

	// Text returns the text of a text node or comment, or the text content
	// of an element.
	Text() string
	// SetText sets the text of a text node or comment, or replaces the
	// children of an element with a single text node.
	SetText(text string)
	// Value and SetValue access the live value of form controls, which is
	// initialized from the value attribute.
	Value() string
	SetValue(v string)

	// Bind registers a handler for the named DOM event. Handlers receive an
	// *events.Event whose Data is supplied by whoever fires the event.
	Bind(event string, h events.Handler) *events.Binding
}

// Document creates nodes.
type Document interface {
	CreateElement(tag string) Node
	CreateTextNode(text string) Node
	CreateComment(text string) Node
}

// Elements returns the element nodes among nodes.
func Elements(nodes []Node) []Node {
	var elems []Node
	for _, n := range nodes {
		if n.Type() == ElementNode {
			elems = append(elems, n)
		}
	}
	return elems
}

// Detach removes nodes from their parents.
func Detach(nodes ...Node) {
	for _, n := range nodes {
		if p := n.Parent(); p != nil {
			p.RemoveChild(n)
		}
	}
}
