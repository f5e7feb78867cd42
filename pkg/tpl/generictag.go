package tpl

import (
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/scope"
)

// GenericTag renders an element without directives, recursing into its
// children.
//
// The output of each child is followed by a fence, an empty comment that
// stays in place when the child's output is replaced. Updates only touch the
// children that are dirty.
type GenericTag struct {
	base
	// The element without children.
	src      dom.Node
	children []Plugin
	elem     dom.Node
	// The output of each child, followed by its fence.
	outputs [][]dom.Node
}

func newGenericTag(c *Compiler, el dom.Node) (*GenericTag, error) {
	g := &GenericTag{src: el.Clone()}
	g.src.Clear()
	for _, ch := range el.ChildNodes() {
		p, err := c.Compile(ch)
		if err != nil {
			return nil, err
		}
		g.addChild(p)
	}
	return g, nil
}

func (g *GenericTag) addChild(p Plugin) {
	p.Events().Bind(EventChange, on(g.subtreeChanged))
	g.children = append(g.children, p)
}

// Clone implements Plugin.
func (g *GenericTag) Clone() Plugin {
	c := &GenericTag{src: g.src}
	for _, ch := range g.children {
		c.addChild(ch.Clone())
	}
	return c
}

// BindCtx implements Plugin.
func (g *GenericTag) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	g.bindBase(ctx)
	g.elem = g.src.Clone()
	doc := g.elem.OwnerDocument()
	g.outputs = make([][]dom.Node, len(g.children))
	for i, ch := range g.children {
		nodes, err := ch.BindCtx(ctx)
		if err != nil {
			return nil, err
		}
		fence := doc.CreateComment("")
		g.outputs[i] = append(nodes[:len(nodes):len(nodes)], fence)
		for _, n := range g.outputs[i] {
			g.elem.AppendChild(n)
		}
	}
	return []dom.Node{g.elem}, nil
}

// Update implements Plugin. The element itself is never replaced.
func (g *GenericTag) Update() ([]dom.Node, bool, error) {
	if !g.bound || !g.dirtySubtree {
		return nil, false, nil
	}
	g.dirtySubtree = false
	var firstErr error
	for i, ch := range g.children {
		if !isDirty(ch) {
			continue
		}
		nodes, replaced, err := ch.Update()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if replaced {
			g.replace(i, nodes)
		}
	}
	return nil, false, firstErr
}

// Replaces the output of the i-th child, keeping its fence.
func (g *GenericTag) replace(i int, nodes []dom.Node) {
	old := g.outputs[i]
	fence := old[len(old)-1]
	dom.Detach(old[:len(old)-1]...)
	for _, n := range nodes {
		g.elem.InsertBefore(n, fence)
	}
	g.outputs[i] = append(nodes[:len(nodes):len(nodes)], fence)
}

// Unbind implements Plugin.
func (g *GenericTag) Unbind() {
	for _, ch := range g.children {
		ch.Unbind()
	}
	g.unbindBase()
}

func (g *GenericTag) String() string { return "<Generic " + g.src.Name() + ">" }
