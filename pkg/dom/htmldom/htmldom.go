// Package htmldom implements the dom interfaces on top of the parse trees of
// golang.org/x/net/html.
//
// It emulates just enough of a browser document for templates to be bound
// and updated outside of a browser: live values of form controls and DOM
// events fired explicitly with Fire.
package htmldom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/events"
)

// Document is a collection of nodes. It keeps a wrapper for every
// *html.Node it has handed out, so that the same tree node is always the
// same dom.Node.
type Document struct {
	nodes map[*html.Node]*Node
}

// NewDocument returns an empty Document.
func NewDocument() *Document { return &Document{nodes: map[*html.Node]*Node{}} }

// Node wraps an *html.Node.
type Node struct {
	doc *Document
	n   *html.Node
	em  events.Emitter

	value    string
	hasValue bool
	writes   int
}

var _ dom.Node = (*Node)(nil)

func (d *Document) wrap(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	if w, ok := d.nodes[n]; ok {
		return w
	}
	w := &Node{doc: d, n: n}
	d.nodes[n] = w
	return w
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) dom.Node {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
}

// CreateTextNode implements dom.Document.
func (d *Document) CreateTextNode(text string) dom.Node {
	return d.wrap(&html.Node{Type: html.TextNode, Data: text})
}

// CreateComment implements dom.Document.
func (d *Document) CreateComment(text string) dom.Node {
	return d.wrap(&html.Node{Type: html.CommentNode, Data: text})
}

// Parse parses an HTML fragment into a new Document and returns its first
// element. All the nodes of the fragment are children of a synthesized body
// element, so the returned element always has a parent.
func Parse(markup string) (*Node, error) {
	return NewDocument().Parse(markup)
}

// Parse parses an HTML fragment within the document. See the package-level
// Parse.
func (d *Document) Parse(markup string) (*Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}
	var first *html.Node
	for _, n := range nodes {
		body.AppendChild(n)
		if first == nil && n.Type == html.ElementNode {
			first = n
		}
	}
	if first == nil {
		return nil, errNoElement
	}
	return d.wrap(first), nil
}

// HTML returns the underlying parse tree node.
func (n *Node) HTML() *html.Node { return n.n }

// Type implements dom.Node.
func (n *Node) Type() dom.NodeType {
	switch n.n.Type {
	case html.TextNode:
		return dom.TextNode
	case html.CommentNode:
		return dom.CommentNode
	}
	return dom.ElementNode
}

// Name implements dom.Node.
func (n *Node) Name() string {
	switch n.n.Type {
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	}
	return n.n.Data
}

// OwnerDocument implements dom.Node.
func (n *Node) OwnerDocument() dom.Document { return n.doc }

// Clone implements dom.Node.
func (n *Node) Clone() dom.Node { return n.doc.wrap(cloneTree(n.n)) }

func cloneTree(n *html.Node) *html.Node {
	c := &html.Node{
		Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace,
		Attr: append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(cloneTree(ch))
	}
	return c
}

// Attributes implements dom.Node.
func (n *Node) Attributes() []dom.Attr {
	attrs := make([]dom.Attr, len(n.n.Attr))
	for i, a := range n.n.Attr {
		attrs[i] = dom.Attr{Name: a.Key, Value: a.Val}
	}
	return attrs
}

// GetAttribute implements dom.Node.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttribute implements dom.Node.
func (n *Node) SetAttribute(name, value string) {
	for i, a := range n.n.Attr {
		if a.Key == name {
			n.n.Attr[i].Val = value
			return
		}
	}
	n.n.Attr = append(n.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute implements dom.Node.
func (n *Node) RemoveAttribute(name string) {
	for i, a := range n.n.Attr {
		if a.Key == name {
			n.n.Attr = append(n.n.Attr[:i:i], n.n.Attr[i+1:]...)
			return
		}
	}
}

// Parent implements dom.Node. The parent of a node returned by Parse is the
// synthesized body element.
func (n *Node) Parent() dom.Node {
	if n.n.Parent == nil {
		return nil
	}
	return n.doc.wrap(n.n.Parent)
}

// ChildNodes implements dom.Node.
func (n *Node) ChildNodes() []dom.Node {
	var nodes []dom.Node
	for ch := n.n.FirstChild; ch != nil; ch = ch.NextSibling {
		nodes = append(nodes, n.doc.wrap(ch))
	}
	return nodes
}

// Children implements dom.Node.
func (n *Node) Children() []dom.Node { return dom.Elements(n.ChildNodes()) }

func (n *Node) unwrap(child dom.Node) *html.Node {
	c := child.(*Node)
	if c.doc != n.doc {
		// Adopt the node.
		for hn, w := range c.doc.nodes {
			if w == c {
				delete(c.doc.nodes, hn)
			}
		}
		c.doc = n.doc
		n.doc.nodes[c.n] = c
	}
	if c.n.Parent != nil {
		c.n.Parent.RemoveChild(c.n)
	}
	return c.n
}

// AppendChild implements dom.Node.
func (n *Node) AppendChild(child dom.Node) { n.n.AppendChild(n.unwrap(child)) }

// InsertBefore implements dom.Node.
func (n *Node) InsertBefore(child, ref dom.Node) {
	if ref == nil {
		n.AppendChild(child)
		return
	}
	r := ref.(*Node).n
	if child.(*Node).n == r {
		return
	}
	n.n.InsertBefore(n.unwrap(child), r)
}

// ReplaceChild implements dom.Node.
func (n *Node) ReplaceChild(child, old dom.Node) {
	if child.(*Node).n == old.(*Node).n {
		return
	}
	n.InsertBefore(child, old)
	n.RemoveChild(old)
}

// RemoveChild implements dom.Node.
func (n *Node) RemoveChild(child dom.Node) {
	c := child.(*Node).n
	if c.Parent == n.n {
		n.n.RemoveChild(c)
	}
}

// Clear implements dom.Node.
func (n *Node) Clear() {
	for n.n.FirstChild != nil {
		n.n.RemoveChild(n.n.FirstChild)
	}
}

// Text implements dom.Node.
func (n *Node) Text() string {
	if n.n.Type == html.TextNode || n.n.Type == html.CommentNode {
		return n.n.Data
	}
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(h *html.Node) {
		for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
			switch ch.Type {
			case html.TextNode:
				sb.WriteString(ch.Data)
			case html.ElementNode:
				collect(ch)
			}
		}
	}
	collect(n.n)
	return sb.String()
}

// SetText implements dom.Node.
func (n *Node) SetText(text string) {
	if n.n.Type == html.TextNode || n.n.Type == html.CommentNode {
		n.n.Data = text
		return
	}
	n.Clear()
	n.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Value implements dom.Node. Until SetValue is called, the value is the
// value attribute.
func (n *Node) Value() string {
	if n.hasValue {
		return n.value
	}
	v, _ := n.GetAttribute("value")
	return v
}

// SetValue implements dom.Node.
func (n *Node) SetValue(v string) {
	n.value, n.hasValue = v, true
	n.writes++
}

// ValueWrites returns the number of times SetValue has been called.
func (n *Node) ValueWrites() int { return n.writes }

// Bind implements dom.Node.
func (n *Node) Bind(event string, h events.Handler) *events.Binding {
	return n.em.Bind(event, h)
}

// HasHandlers reports whether any handler is bound to the named event.
func (n *Node) HasHandlers(event string) bool { return n.em.HasHandlers(event) }

// Fire fires a DOM event on the node.
func Fire(n dom.Node, event string, data any) {
	n.(*Node).em.Emit(event, data)
}

// Input simulates the user typing into a form control: it sets the value
// and fires an "input" event.
func Input(n dom.Node, value string) {
	n.SetValue(value)
	Fire(n, "input", value)
}

// Render renders a node as HTML.
func Render(n dom.Node) string {
	var buf bytes.Buffer
	// html.Render only fails when writing fails, which a bytes.Buffer never
	// does.
	_ = html.Render(&buf, n.(*Node).n)
	return buf.String()
}

// RenderChildren renders the children of a node as HTML.
func RenderChildren(n dom.Node) string {
	var sb strings.Builder
	for _, ch := range n.ChildNodes() {
		sb.WriteString(Render(ch))
	}
	return sb.String()
}
