package tpl

import (
	"regexp"
	"strings"

	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/events"
	"src.circular.dev/pkg/expr"
	"src.circular.dev/pkg/logutil"
	"src.circular.dev/pkg/scope"
	"src.circular.dev/pkg/vals"
)

var logger = logutil.GetLogger("[tpl] ")

var (
	loopSpecRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s+in\s+(.*)$`)
	loopCondRe = regexp.MustCompile(`^\s*if\s+(.*)$`)
)

// For renders its element once for every item of a sequence. The directive
// has the form "var in seq" or "var in seq if cond".
//
// Every item is rendered in its own context, derived from the bound context
// and binding only the loop variable. A change of the sequence rebuilds the
// whole output; a change within the output of an item only updates that item.
type For struct {
	base
	v    string
	seq  expr.Node
	cond expr.Node
	tmpl Plugin

	items []*forItem
	subs  []*events.Binding
}

type forItem struct {
	ctx      *scope.Scope
	cond     expr.Node
	p        Plugin
	nodes    []dom.Node
	included bool
}

func newFor(b *Build) (Plugin, error) {
	m := loopSpecRe.FindStringSubmatch(b.Arg)
	if m == nil {
		return nil, pluginError("for", ErrBadLoopSpec, "invalid loop specification: "+b.Arg)
	}
	seq, end, err := expr.ParsePrefix(m[2])
	if err != nil {
		return nil, pluginError("for", err, "")
	}
	var cond expr.Node
	if rest := m[2][end:]; strings.TrimSpace(rest) != "" {
		cm := loopCondRe.FindStringSubmatch(rest)
		if cm == nil {
			return nil, pluginError("for", ErrBadLoopSpec, "invalid loop specification: "+b.Arg)
		}
		cond, err = expr.Parse(cm[1])
		if err != nil {
			return nil, pluginError("for", err, "")
		}
	}
	tmpl, err := b.Next()
	if err != nil {
		return nil, err
	}
	return newForFrom(m[1], seq, cond, tmpl), nil
}

func newForFrom(v string, seq, cond expr.Node, tmpl Plugin) *For {
	f := &For{v: v, seq: seq, cond: cond, tmpl: tmpl}
	seq.Events().Bind(expr.EventChange, on(f.selfChanged))
	return f
}

// Clone implements Plugin.
func (f *For) Clone() Plugin {
	var cond expr.Node
	if f.cond != nil {
		cond = f.cond.Clone()
	}
	return newForFrom(f.v, f.seq.Clone(), cond, f.tmpl.Clone())
}

// BindCtx implements Plugin.
func (f *For) BindCtx(ctx *scope.Scope) ([]dom.Node, error) {
	f.clear()
	f.bindBase(ctx)
	f.seq.BindCtx(ctx)
	return f.build()
}

func (f *For) build() ([]dom.Node, error) {
	seq, err := f.seq.Eval(false)
	var items []any
	if err == nil {
		items, err = vals.Iterate(seq)
	}
	if err != nil {
		logger.Printf("for %s in %s: %v", f.v, f.seq, err)
		items = nil
	}
	for _, item := range items {
		it := &forItem{ctx: scope.New(f.ctx)}
		it.ctx.SetQuiet(f.v, item)
		f.items = append(f.items, it)
		if f.cond != nil {
			it.cond = f.cond.Clone()
			it.cond.BindCtx(it.ctx)
			f.subs = append(f.subs, it.cond.Events().Bind(expr.EventChange, on(f.selfChanged)))
			ok, err := it.cond.Eval(false)
			if err != nil {
				logger.Printf("for %s in %s: condition %s: %v", f.v, f.seq, f.cond, err)
				continue
			}
			if !vals.Bool(ok) {
				continue
			}
		}
		it.p = f.tmpl.Clone()
		f.subs = append(f.subs, it.p.Events().Bind(EventChange, on(f.subtreeChanged)))
		it.nodes, err = it.p.BindCtx(it.ctx)
		if err != nil {
			return nil, err
		}
		it.included = true
	}
	return f.nodes(), nil
}

func (f *For) nodes() []dom.Node {
	nodes := []dom.Node{}
	for _, it := range f.items {
		if it.included {
			nodes = append(nodes, it.nodes...)
		}
	}
	return nodes
}

func (f *For) clear() {
	for _, b := range f.subs {
		b.Unbind()
	}
	f.subs = nil
	for _, it := range f.items {
		if it.cond != nil {
			it.cond.Unbind()
		}
		if it.p != nil {
			it.p.Unbind()
		}
		it.ctx.Close()
	}
	f.items = nil
}

// Update implements Plugin.
func (f *For) Update() ([]dom.Node, bool, error) {
	if !f.bound {
		return nil, false, nil
	}
	if f.dirtySelf {
		f.clear()
		f.dirtySelf, f.dirtySubtree = false, false
		nodes, err := f.build()
		return nodes, true, err
	}
	if !f.dirtySubtree {
		return nil, false, nil
	}
	f.dirtySubtree = false
	changed := false
	var firstErr error
	for _, it := range f.items {
		if !it.included || !isDirty(it.p) {
			continue
		}
		nodes, replaced, err := it.p.Update()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if replaced {
			it.nodes = nodes
			changed = true
		}
	}
	if changed {
		return f.nodes(), true, firstErr
	}
	return nil, false, firstErr
}

// Unbind implements Plugin.
func (f *For) Unbind() {
	f.clear()
	f.seq.Unbind()
	f.unbindBase()
}

// Items returns the number of rendered items.
func (f *For) Items() int {
	n := 0
	for _, it := range f.items {
		if it.included {
			n++
		}
	}
	return n
}

func (f *For) String() string {
	s := "<For " + f.v + " in " + f.seq.String()
	if f.cond != nil {
		s += " if " + f.cond.String()
	}
	return s + ">"
}
