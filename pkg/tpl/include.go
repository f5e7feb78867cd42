package tpl

import (
	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/scope"
)

// TemplateDef defines a named template, which renders nothing in place. The
// template is visible to Include in the bound context and all contexts
// derived from it.
type TemplateDef struct {
	base
	name string
	tmpl Plugin
}

func newTemplateDef(b *Build) (Plugin, error) {
	name := b.Arg
	if name == "" {
		name = b.Kwargs["name"]
	}
	if name == "" {
		return nil, pluginError("template", ErrBadArgument, "template needs a name")
	}
	tmpl, err := b.Next()
	if err != nil {
		return nil, err
	}
	return &TemplateDef{name: name, tmpl: tmpl}, nil
}

// Clone implements Plugin. Clones share the compiled template.
func (t *TemplateDef) Clone() Plugin { return &TemplateDef{name: t.name, tmpl: t.tmpl} }

// BindCtx implements Plugin.
func (t *TemplateDef) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	t.bindBase(ctx)
	ctx.DefineTemplate(t.name, t.tmpl)
	return nil, nil
}

// Update implements Plugin.
func (t *TemplateDef) Update() ([]dom.Node, bool, error) { return nil, false, nil }

// Unbind implements Plugin.
func (t *TemplateDef) Unbind() { t.unbindBase() }

// Include renders a template defined with TemplateDef, looked up by name in
// the bound context. It is written either as the tag <include name="x"> or as
// the directive include="x"; in both cases the element is replaced by the
// template.
type Include struct {
	base
	name string
	inst Plugin
	sub  *events.Binding
}

func newInclude(b *Build) (Plugin, error) {
	name := b.Arg
	if name == "" {
		name = b.Kwargs["name"]
	}
	if name == "" {
		return nil, pluginError("include", ErrBadArgument, "include needs a name")
	}
	return &Include{name: name}, nil
}

// Clone implements Plugin.
func (in *Include) Clone() Plugin { return &Include{name: in.name} }

// BindCtx implements Plugin.
func (in *Include) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	in.release()
	in.bindBase(ctx)
	t, ok := ctx.LookupTemplate(in.name)
	if !ok {
		return nil, pluginError("include", ErrTemplateNotFound, "template not found: "+in.name)
	}
	tmpl, ok := t.(Plugin)
	if !ok {
		return nil, pluginError("include", ErrTemplateNotFound, in.name+" is not a template")
	}
	in.inst = tmpl.Clone()
	in.sub = in.inst.Events().Bind(EventChange, on(in.subtreeChanged))
	return in.inst.BindCtx(ctx)
}

// Update implements Plugin.
func (in *Include) Update() ([]dom.Node, bool, error) {
	if !in.bound || !in.dirtySubtree {
		return nil, false, nil
	}
	in.dirtySubtree = false
	return in.inst.Update()
}

func (in *Include) release() {
	if in.inst != nil {
		in.sub.Unbind()
		in.inst.Unbind()
		in.inst, in.sub = nil, nil
	}
}

// Unbind implements Plugin.
func (in *Include) Unbind() {
	in.release()
	in.unbindBase()
}

func (in *Include) String() string { return "<Include " + in.name + ">" }
