package tpl

import (
	"sort"
	"sync"

	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/expr"
	"src.circular.dev/pkg/sched"
)

// Compiler compiles markup into plugin trees.
//
// Compilation of an element is planned once: the directives applying to it
// and their arguments are determined on the first visit and reused when the
// same element is compiled again. The source markup is never modified.
type Compiler struct {
	reg   *Registry
	sched sched.Scheduler

	mu    sync.Mutex
	plans map[dom.Node]*plan
}

// NewCompiler creates a Compiler. The scheduler is used by plugins that
// debounce; it may be nil, in which case they don't.
func NewCompiler(reg *Registry, s sched.Scheduler) *Compiler {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Compiler{reg: reg, sched: s, plans: map[dom.Node]*plan{}}
}

type plan struct {
	reqs []request
	// The element with all directives and their arguments removed.
	rest dom.Node
	// The interpolated attributes of rest, and rest without them.
	interp []dom.Attr
	plain  dom.Node
}

type request struct {
	spec   *Spec
	arg    string
	kwargs map[string]string
}

// Build is passed to the constructor of a plugin.
type Build struct {
	// The element, with the attributes consumed by this and all other
	// directives removed. Plugins must not modify it.
	Elem dom.Node
	// The value of the directive attribute; empty when the plugin applies
	// because of the tag name.
	Arg string
	// Keyword arguments, keyed by the argument names in the Spec.
	Kwargs map[string]string

	c    *Compiler
	plan *plan
	i    int
}

// Next compiles the element with the remaining directives.
func (b *Build) Next() (Plugin, error) { return b.c.compileFrom(b.plan, b.i+1) }

// Compile compiles another node, typically a child of the element.
func (b *Build) Compile(n dom.Node) (Plugin, error) { return b.c.Compile(n) }

// Scheduler returns the scheduler of the compiler, which may be nil.
func (b *Build) Scheduler() sched.Scheduler { return b.c.sched }

// Compile compiles a node.
//
// Text nodes and comments compile to Text plugins. Elements compile to the
// plugins of their directives in the order of descending priority, each
// wrapping the next one. The innermost plugin is an InterpolatedAttrs if some
// attribute contains an interpolation, otherwise a GenericTag.
func (c *Compiler) Compile(n dom.Node) (Plugin, error) {
	if n.Type() != dom.ElementNode {
		return newText(n)
	}
	return c.compileFrom(c.planFor(n), 0)
}

// Plans returns the number of elements planned so far.
func (c *Compiler) Plans() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plans)
}

func (c *Compiler) compileFrom(p *plan, i int) (Plugin, error) {
	if i < len(p.reqs) {
		r := p.reqs[i]
		return r.spec.New(&Build{Elem: p.rest, Arg: r.arg, Kwargs: r.kwargs, c: c, plan: p, i: i})
	}
	if len(p.interp) > 0 {
		return newInterpolatedAttrs(c, p)
	}
	return newGenericTag(c, p.plain)
}

func (c *Compiler) planFor(n dom.Node) *plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.plans[n]; ok {
		return p
	}
	p := c.makePlan(n)
	c.plans[n] = p
	return p
}

func (c *Compiler) makePlan(n dom.Node) *plan {
	attrs := n.Attributes()
	consumed := make([]bool, len(attrs))
	var reqs []request
	for i, a := range attrs {
		if s, ok := c.reg.Lookup(a.Name); ok {
			reqs = append(reqs, request{spec: s, arg: a.Value})
			consumed[i] = true
		}
	}
	if s, ok := c.reg.Lookup(n.Name()); ok && s.Tag {
		reqs = append(reqs, request{spec: s})
	}
	for k := range reqs {
		r := &reqs[k]
		for i, a := range attrs {
			if consumed[i] {
				continue
			}
			if name, ok := r.spec.arg(a.Name); ok {
				if r.kwargs == nil {
					r.kwargs = map[string]string{}
				}
				r.kwargs[name] = a.Value
				consumed[i] = true
			}
		}
	}
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].spec.Priority > reqs[j].spec.Priority })

	p := &plan{reqs: reqs, rest: n.Clone()}
	for i, a := range attrs {
		if consumed[i] {
			p.rest.RemoveAttribute(a.Name)
		} else if expr.HasInterpolations(a.Value) {
			p.interp = append(p.interp, a)
		}
	}
	p.plain = p.rest
	if len(p.interp) > 0 {
		p.plain = p.rest.Clone()
		for _, a := range p.interp {
			p.plain.RemoveAttribute(a.Name)
		}
	}
	return p
}
