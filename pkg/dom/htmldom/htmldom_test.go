package htmldom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/events"
)

func mustParse(t *testing.T, markup string) *Node {
	t.Helper()
	n, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q) -> %v", markup, err)
	}
	return n
}

func TestParse(t *testing.T) {
	n := mustParse(t, `<div class="a" id="x">Hello <b>world</b></div>`)
	if n.Type() != dom.ElementNode || n.Name() != "div" {
		t.Errorf("got %v %q, want element div", n.Type(), n.Name())
	}
	wantAttrs := []dom.Attr{{Name: "class", Value: "a"}, {Name: "id", Value: "x"}}
	if diff := cmp.Diff(wantAttrs, n.Attributes()); diff != "" {
		t.Errorf("Attributes() (-want +got):\n%s", diff)
	}
	if n.Text() != "Hello world" {
		t.Errorf("Text() -> %q", n.Text())
	}
	if p := n.Parent(); p == nil || p.Name() != "body" {
		t.Errorf("Parent() -> %v, want the body element", p)
	}
	if len(n.ChildNodes()) != 2 || len(n.Children()) != 1 {
		t.Errorf("got %d child nodes and %d children", len(n.ChildNodes()), len(n.Children()))
	}
}

func TestParse_NoElement(t *testing.T) {
	if _, err := Parse("just text"); err != errNoElement {
		t.Errorf("Parse -> %v, want errNoElement", err)
	}
}

func TestWrapperIdentity(t *testing.T) {
	n := mustParse(t, `<ul><li>a</li></ul>`)
	li1 := n.Children()[0]
	li2 := n.ChildNodes()[0]
	if li1 != li2 {
		t.Errorf("the same node has two wrappers")
	}
	if li1.Parent() != dom.Node(n) {
		t.Errorf("Parent of a child is not the node")
	}
}

func TestAttributes(t *testing.T) {
	n := mustParse(t, `<input type="text">`)
	n.SetAttribute("value", "1")
	n.SetAttribute("type", "number")
	if v, ok := n.GetAttribute("type"); !ok || v != "number" {
		t.Errorf("GetAttribute(type) -> %q, %v", v, ok)
	}
	n.RemoveAttribute("type")
	n.RemoveAttribute("nonexistent")
	if got := Render(n); got != `<input value="1"/>` {
		t.Errorf("Render -> %q", got)
	}
}

func TestTreeOperations(t *testing.T) {
	n := mustParse(t, `<p><i>1</i><b>2</b></p>`)
	doc := n.OwnerDocument()
	i, b := n.ChildNodes()[0], n.ChildNodes()[1]

	n.InsertBefore(b, i)
	if got := RenderChildren(n); got != "<b>2</b><i>1</i>" {
		t.Errorf("after moving: %q", got)
	}
	n.InsertBefore(doc.CreateTextNode("x"), nil)
	c := doc.CreateComment("fence")
	n.ReplaceChild(c, i)
	if got := RenderChildren(n); got != "<b>2</b><!--fence-->x" {
		t.Errorf("after replacing: %q", got)
	}
	if i.Parent() != nil {
		t.Errorf("replaced node still has a parent")
	}
	dom.Detach(b)
	if got := RenderChildren(n); got != "<!--fence-->x" {
		t.Errorf("after detaching: %q", got)
	}
	n.Clear()
	if len(n.ChildNodes()) != 0 {
		t.Errorf("Clear left children")
	}
}

func TestClone(t *testing.T) {
	n := mustParse(t, `<div a="1"><span>t</span></div>`)
	var fired bool
	n.Bind("click", func(*events.Event) { fired = true })
	c := n.Clone()
	if c.Parent() != nil {
		t.Errorf("clone has a parent")
	}
	if Render(c) != Render(n) {
		t.Errorf("clone renders %q, original %q", Render(c), Render(n))
	}
	c.SetAttribute("a", "2")
	c.Children()[0].SetText("u")
	if Render(n) != `<div a="1"><span>t</span></div>` {
		t.Errorf("modifying the clone changed the original: %q", Render(n))
	}
	Fire(c, "click", nil)
	if fired {
		t.Errorf("clone kept event handlers")
	}
}

func TestText(t *testing.T) {
	n := mustParse(t, `<div>a<b>b</b></div>`)
	n.SetText("new")
	if Render(n) != "<div>new</div>" {
		t.Errorf("Render -> %q", Render(n))
	}
	tn := n.ChildNodes()[0]
	tn.SetText("<x>")
	if tn.Text() != "<x>" || Render(n) != "<div>&lt;x&gt;</div>" {
		t.Errorf("text node: %q, rendered %q", tn.Text(), Render(n))
	}
}

func TestValue(t *testing.T) {
	n := mustParse(t, `<input value="init">`)
	if n.Value() != "init" {
		t.Errorf("Value() -> %q", n.Value())
	}
	var got []any
	n.Bind("input", func(ev *events.Event) { got = append(got, ev.Data) })
	Input(n, "typed")
	if n.Value() != "typed" || n.ValueWrites() != 1 {
		t.Errorf("Value() -> %q after %d writes", n.Value(), n.ValueWrites())
	}
	if diff := cmp.Diff([]any{"typed"}, got); diff != "" {
		t.Errorf("input events (-want +got):\n%s", diff)
	}
	if !n.HasHandlers("input") || n.HasHandlers("change") {
		t.Errorf("wrong HasHandlers")
	}
}

func TestAdoptFromOtherDocument(t *testing.T) {
	n := mustParse(t, `<div></div>`)
	other := NewDocument().CreateElement("SPAN")
	n.AppendChild(other)
	if other.OwnerDocument() != n.OwnerDocument() {
		t.Errorf("adopted node keeps its old document")
	}
	if n.Children()[0] != other {
		t.Errorf("adopted node has a new wrapper")
	}
	if Render(n) != "<div><span></span></div>" {
		t.Errorf("Render -> %q", Render(n))
	}
}
