package tpl

import (
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/expr"
	"src.circular.dev/pkg/scope"
)

// InterpolatedAttrs sets the attributes of an element that contain
// interpolations, like class="item {{ cls }}". The rest of the element is
// rendered by its child.
type InterpolatedAttrs struct {
	base
	attrs []interpAttr
	child Plugin
	nodes []dom.Node
}

type interpAttr struct {
	name string
	str  *expr.InterpolatedStr
}

func newInterpolatedAttrs(c *Compiler, p *plan) (*InterpolatedAttrs, error) {
	ia := &InterpolatedAttrs{}
	for _, a := range p.interp {
		str, err := expr.NewInterpolatedStr(a.Value)
		if err != nil {
			return nil, pluginError("attribute "+a.Name, err, "")
		}
		ia.addAttr(a.Name, str)
	}
	child, err := newGenericTag(c, p.plain)
	if err != nil {
		return nil, err
	}
	ia.setChild(child)
	return ia, nil
}

func (ia *InterpolatedAttrs) addAttr(name string, str *expr.InterpolatedStr) {
	str.Events().Bind(expr.EventChange, on(ia.selfChanged))
	ia.attrs = append(ia.attrs, interpAttr{name, str})
}

func (ia *InterpolatedAttrs) setChild(p Plugin) {
	p.Events().Bind(EventChange, on(ia.subtreeChanged))
	ia.child = p
}

// Clone implements Plugin.
func (ia *InterpolatedAttrs) Clone() Plugin {
	c := &InterpolatedAttrs{}
	for _, a := range ia.attrs {
		c.addAttr(a.name, a.str.Clone())
	}
	c.setChild(ia.child.Clone())
	return c
}

// BindCtx implements Plugin.
func (ia *InterpolatedAttrs) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	ia.bindBase(ctx)
	nodes, err := ia.child.BindCtx(ctx)
	if err != nil {
		return nil, err
	}
	ia.nodes = nodes
	for _, a := range ia.attrs {
		a.str.BindCtx(ctx)
	}
	ia.apply()
	return nodes, nil
}

func (ia *InterpolatedAttrs) apply() {
	for _, a := range ia.attrs {
		v := a.str.Value()
		for _, n := range dom.Elements(ia.nodes) {
			n.SetAttribute(a.name, v)
		}
	}
}

// Update implements Plugin.
func (ia *InterpolatedAttrs) Update() ([]dom.Node, bool, error) {
	if !ia.bound {
		return nil, false, nil
	}
	var (
		nodes    []dom.Node
		replaced bool
		err      error
	)
	if ia.dirtySubtree {
		ia.dirtySubtree = false
		nodes, replaced, err = ia.child.Update()
		if replaced {
			ia.nodes = nodes
		}
	}
	if ia.dirtySelf || replaced {
		ia.dirtySelf = false
		ia.apply()
	}
	return nodes, replaced, err
}

// Unbind implements Plugin.
func (ia *InterpolatedAttrs) Unbind() {
	for _, a := range ia.attrs {
		a.str.Unbind()
	}
	ia.child.Unbind()
	ia.unbindBase()
}
