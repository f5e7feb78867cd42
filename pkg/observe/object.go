package observe

import (
	"strings"

	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/vals"
)

// Object is an observable value with named attributes.
type Object struct {
	em    events.Emitter
	attrs map[string]any
	names []string
}

// NewObject returns a new Object with the given attributes, which are
// wrapped.
func NewObject(attrs map[string]any) *Object {
	o := &Object{attrs: map[string]any{}}
	for _, k := range sortedKeys(attrs) {
		name := k.(string)
		o.names = append(o.names, name)
		o.attrs[name] = Wrap(attrs[name])
	}
	return o
}

// Events returns the emitter of the object.
func (o *Object) Events() *events.Emitter { return &o.em }

// Kind implements vals.Kinder.
func (o *Object) Kind() string { return "object" }

// GetAttr implements vals.AttrGetter.
func (o *Object) GetAttr(name string) (any, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// SetAttr implements vals.AttrSetter.
func (o *Object) SetAttr(name string, v any) error {
	v = Wrap(v)
	old, hasOld := o.attrs[name]
	if !hasOld {
		o.names = append(o.names, name)
	}
	o.attrs[name] = v
	o.em.Emit(EventChange, &Change{Object: o, Kind: Set, Key: name,
		Old: old, HasOld: hasOld, Value: v, HasValue: true})
	return nil
}

// DelAttr removes an attribute.
func (o *Object) DelAttr(name string) error {
	old, ok := o.attrs[name]
	if !ok {
		return vals.NoSuchAttr(o, name)
	}
	delete(o.attrs, name)
	for i, n := range o.names {
		if n == name {
			o.names = append(o.names[:i:i], o.names[i+1:]...)
			break
		}
	}
	o.em.Emit(EventChange, &Change{Object: o, Kind: Delete, Key: name, Old: old, HasOld: true})
	return nil
}

// Attrs returns the names of the attributes in the order they were added.
func (o *Object) Attrs() []string { return append([]string(nil), o.names...) }

// Repr returns a representation like "object(a=1, b='x')".
func (o *Object) Repr() string {
	var sb strings.Builder
	sb.WriteString("object(")
	for i, name := range o.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name + "=" + vals.Repr(o.attrs[name]))
	}
	sb.WriteString(")")
	return sb.String()
}
