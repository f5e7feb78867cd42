package tpl

import (
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/expr"
	"src.circular.dev/pkg/scope"
)

// Text renders a text node, interpolating it if it contains {{ }}. Comments
// and text without interpolations are copied as is.
type Text struct {
	base
	src  dom.Node
	str  *expr.InterpolatedStr
	node dom.Node
}

func newText(n dom.Node) (*Text, error) {
	t := &Text{src: n.Clone()}
	if n.Type() == dom.TextNode && expr.HasInterpolations(n.Text()) {
		str, err := expr.NewInterpolatedStr(n.Text())
		if err != nil {
			return nil, pluginError("text", err, "")
		}
		t.setStr(str)
	}
	return t, nil
}

func (t *Text) setStr(str *expr.InterpolatedStr) {
	t.str = str
	str.Events().Bind(expr.EventChange, on(t.selfChanged))
}

// Clone implements Plugin.
func (t *Text) Clone() Plugin {
	c := &Text{src: t.src}
	if t.str != nil {
		c.setStr(t.str.Clone())
	}
	return c
}

// BindCtx implements Plugin.
func (t *Text) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	t.node = t.src.Clone()
	t.bindBase(ctx)
	if t.str != nil {
		t.str.BindCtx(ctx)
		t.node.SetText(t.str.Value())
	}
	return []dom.Node{t.node}, nil
}

// Update implements Plugin. A text node is patched in place.
func (t *Text) Update() ([]dom.Node, bool, error) {
	if t.bound && t.dirtySelf {
		t.node.SetText(t.str.Value())
	}
	t.dirtySelf, t.dirtySubtree = false, false
	return nil, false, nil
}

// Unbind implements Plugin.
func (t *Text) Unbind() {
	if t.str != nil {
		t.str.Unbind()
	}
	t.unbindBase()
}

func (t *Text) String() string {
	if t.str != nil {
		return "<Text " + t.str.Source() + ">"
	}
	return "<Text>"
}
