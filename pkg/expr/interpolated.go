package expr

import (
	"strings"

	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/vals"
)

// InterpolatedStr is a string with {{ }} interpolations, like
// "Hello {{ name }}!". Each interpolation is evaluated with str semantics,
// and interpolations that are not defined render as the empty string.
//
// A bound InterpolatedStr emits a "change" event when its value may have
// changed. When a single interpolation changes to a known value, the event
// carries the new string and the InterpolatedStr stays clean; otherwise it
// becomes dirty and emits once, until Value is called again.
type InterpolatedStr struct {
	em    events.Emitter
	src   string
	nodes []Node
	parts []string
	dirty bool
	subs  []*events.Binding
}

// NewInterpolatedStr parses src with DefaultParser.
func NewInterpolatedStr(src string) (*InterpolatedStr, error) {
	nodes, err := ParseInterpolated(src)
	if err != nil {
		return nil, err
	}
	return newInterpolatedStr(src, nodes), nil
}

func newInterpolatedStr(src string, nodes []Node) *InterpolatedStr {
	return &InterpolatedStr{src: src, nodes: nodes, parts: make([]string, len(nodes)), dirty: true}
}

// HasInterpolations reports whether src contains an interpolation.
func HasInterpolations(src string) bool { return strings.Contains(src, "{{") }

// Source returns the source of the string.
func (s *InterpolatedStr) Source() string { return s.src }

// String returns the source of the string.
func (s *InterpolatedStr) String() string { return s.src }

// Nodes returns the parsed parts: constants for the literal text and
// *Fragment nodes for the interpolations.
func (s *InterpolatedStr) Nodes() []Node { return s.nodes }

// Events returns the emitter of "change" events.
func (s *InterpolatedStr) Events() *events.Emitter { return &s.em }

// Dirty reports whether the value needs to be recomputed.
func (s *InterpolatedStr) Dirty() bool { return s.dirty }

// Clone returns an unbound copy.
func (s *InterpolatedStr) Clone() *InterpolatedStr {
	return newInterpolatedStr(s.src, cloneAll(s.nodes))
}

// BindCtx binds all the interpolations to ctx.
func (s *InterpolatedStr) BindCtx(ctx Context) {
	s.Unbind()
	s.dirty = true
	for i, n := range s.nodes {
		n.BindCtx(ctx)
		if n.isConst() {
			continue
		}
		i := i
		s.subs = append(s.subs, n.Events().Bind(EventChange, func(ev *events.Event) {
			if c, ok := ev.Data.(*Change); ok {
				s.partChanged(i, c)
			}
		}))
	}
}

// Unbind releases all subscriptions.
func (s *InterpolatedStr) Unbind() {
	for _, b := range s.subs {
		b.Unbind()
	}
	s.subs = nil
	for _, n := range s.nodes {
		n.Unbind()
	}
}

func (s *InterpolatedStr) partChanged(i int, c *Change) {
	if c.HasValue && !s.dirty {
		s.parts[i] = vals.ToString(c.Value)
		s.em.Emit(EventChange, &Change{Value: s.join(), HasValue: true})
		return
	}
	if !s.dirty {
		s.dirty = true
		s.em.Emit(EventChange, &Change{})
	}
}

// Value returns the current value, recomputing the interpolations that
// changed.
func (s *InterpolatedStr) Value() string {
	if s.dirty {
		for i, n := range s.nodes {
			v, _ := n.Eval(false)
			s.parts[i] = vals.ToString(v)
		}
		s.dirty = false
	}
	return s.join()
}

// EvalWith evaluates the string against ctx, without using or changing any
// state.
func (s *InterpolatedStr) EvalWith(ctx Context) string {
	var sb strings.Builder
	for _, n := range s.nodes {
		v, _ := n.EvalWith(ctx)
		sb.WriteString(vals.ToString(v))
	}
	return sb.String()
}

func (s *InterpolatedStr) join() string { return strings.Join(s.parts, "") }
