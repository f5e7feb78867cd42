package expr

import (
	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/vals"
)

// Const is a literal number or string. Constants are never dirty and are
// shared between clones.
type Const struct {
	node
	V any
}

func newConst(v any) *Const {
	c := &Const{V: v}
	c.self = c
	c.cache, c.defined = v, true
	return c
}

func (c *Const) String() string { return vals.Repr(c.V) }

func (c *Const) BindCtx(Context) {}

func (c *Const) Unbind() {}

func (c *Const) Clone() Node { return c }

func (c *Const) compute(bool) (any, error) { return c.V, nil }

func (c *Const) evalIn(Context) (any, error) { return c.V, nil }

func (c *Const) isConst() bool { return true }

// Names that always refer to the same values and cannot be rebound.
var constants = map[string]any{
	"True":  true,
	"False": false,
	"None":  nil,
	"str":   vals.Builtins["str"],
	"int":   vals.Builtins["int"],
	"len":   vals.Builtins["len"],
}

// Ident is a name looked up in the context.
//
// A bound Ident subscribes to the context, to learn when the name is
// rebound, and to the value the name resolves to, to learn about in-place
// mutations of the value.
type Ident struct {
	node
	Name     string
	constant bool
	ctxBind  valueObserver
	value    valueObserver
}

func newIdent(name string) *Ident {
	id := &Ident{Name: name}
	id.self = id
	if v, ok := constants[name]; ok {
		id.constant = true
		id.cache, id.defined = v, true
	} else {
		id.dirty = true
	}
	return id
}

func (id *Ident) String() string { return id.Name }

func (id *Ident) BindCtx(ctx Context) {
	if !id.constant {
		id.node.BindCtx(ctx)
	}
}

func (id *Ident) Unbind() {
	if !id.constant {
		id.node.Unbind()
	}
}

func (id *Ident) Clone() Node {
	if id.constant {
		return id
	}
	return newIdent(id.Name)
}

func (id *Ident) isConst() bool { return id.constant }

func (id *Ident) IsAssignable() bool { return !id.constant }

func (id *Ident) Assign(v any) error {
	switch {
	case id.constant:
		return assignError(id, ErrNotAssignable)
	case id.ctx == nil:
		return assignError(id, ErrNoContext)
	}
	id.ctx.Set(id.Name, v)
	return nil
}

func (id *Ident) bindSelf() {
	if id.ctx != nil {
		id.ctxBind.observe(id.ctx, id.ctxChanged)
	}
}

func (id *Ident) unbindSelf() {
	id.ctxBind.stop()
	id.value.stop()
}

func (id *Ident) ctxChanged(c *observe.Change) {
	if c.Key != id.Name {
		return
	}
	if c.Kind == observe.Set && c.HasValue {
		id.value.observe(c.Value, id.mutated)
		id.update(c.Value)
		return
	}
	id.value.stop()
	id.markDirty()
}

func (id *Ident) compute(bool) (any, error) {
	v, err := id.evalIn(id.ctx)
	if err != nil {
		id.value.stop()
		return nil, err
	}
	id.value.observe(v, id.mutated)
	return v, nil
}

func (id *Ident) evalIn(ctx Context) (any, error) {
	if id.constant {
		return id.cache, nil
	}
	if ctx != nil {
		if v, ok := ctx.Get(id.Name); ok {
			return v, nil
		}
	}
	return nil, evalError(id, ErrUndefinedName)
}
