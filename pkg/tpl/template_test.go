package tpl

import (
	"strings"
	"testing"
	"time"

	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/dom/htmldom"
	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/sched"
	"src.circular.dev/pkg/scope"
)

type fixture struct {
	tpl   *Template
	ctx   *scope.Scope
	clock *sched.Manual
	// The element containing the template.
	container dom.Node
}

// Binds the markup, which must be a single element, to a context with the
// given data.
func setup(t *testing.T, markup string, data map[string]any) *fixture {
	t.Helper()
	return setupWith(t, markup, data, Options{})
}

func setupWith(t *testing.T, markup string, data map[string]any, opts Options) *fixture {
	t.Helper()
	container, err := htmldom.Parse("<div>" + markup + "</div>")
	if err != nil {
		t.Fatalf("Parse -> %v", err)
	}
	clock := sched.NewManual()
	if opts.Scheduler == nil {
		opts.Scheduler = clock
	}
	tpl, err := New(container.ChildNodes()[0], opts)
	if err != nil {
		t.Fatalf("New -> %v", err)
	}
	ctx := scope.FromMap(data, nil)
	if err := tpl.BindCtx(ctx); err != nil {
		t.Fatalf("BindCtx -> %v", err)
	}
	t.Cleanup(tpl.Unbind)
	return &fixture{tpl, ctx, clock, container}
}

// Renders the content of the container without fences.
func (f *fixture) html() string {
	return stripFences(htmldom.RenderChildren(f.container))
}

func (f *fixture) tick() { f.clock.Advance(DefaultInterval) }

func stripFences(s string) string { return strings.ReplaceAll(s, "<!---->", "") }

func getList(t *testing.T, ctx *scope.Scope, name string) *observe.List {
	t.Helper()
	v, _ := ctx.Get(name)
	l, ok := v.(*observe.List)
	if !ok {
		t.Fatalf("%s is %T, not a list", name, v)
	}
	return l
}

func TestTemplate_Render(t *testing.T) {
	f := setup(t, `<p class="x">Hello {{ name }}! <b>{{ n + 1 }}</b></p>`,
		map[string]any{"name": "Jane", "n": 1})
	if got := f.html(); got != `<p class="x">Hello Jane! <b>2</b></p>` {
		t.Errorf("rendered %q", got)
	}
	if len(f.tpl.Nodes()) != 1 || f.tpl.Nodes()[0].Name() != "p" {
		t.Errorf("Nodes() -> %v", f.tpl.Nodes())
	}
}

func TestTemplate_CoalescesUpdates(t *testing.T) {
	f := setup(t, `<p>{{ a }} {{ b }}</p>`, map[string]any{"a": 1, "b": 2})
	p := f.tpl.Nodes()[0]

	f.ctx.Set("a", 10)
	f.ctx.Set("b", 20)
	if !f.tpl.Pending() || f.clock.Pending() != 1 {
		t.Errorf("got %d timers, want 1", f.clock.Pending())
	}
	if got := f.html(); got != "<p>1 2</p>" {
		t.Errorf("document updated before the timer fired: %q", got)
	}

	f.tick()
	if got := f.html(); got != "<p>10 20</p>" {
		t.Errorf("rendered %q after the update", got)
	}
	if f.tpl.Pending() || f.clock.Pending() != 0 {
		t.Errorf("timer not cancelled after the update")
	}
	if f.tpl.Nodes()[0] != p {
		t.Errorf("element replaced by an update of its text")
	}
}

func TestTemplate_UnrelatedChange(t *testing.T) {
	f := setup(t, `<p>{{ a }}</p>`, map[string]any{"a": 1})
	f.ctx.Set("other", 1)
	if f.tpl.Pending() {
		t.Errorf("update scheduled for an unrelated change")
	}
}

func TestTemplate_ManualUpdate(t *testing.T) {
	container, _ := htmldom.Parse(`<div><p>{{ a }}</p></div>`)
	tpl, err := New(container.ChildNodes()[0], Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := scope.FromMap(map[string]any{"a": "x"}, nil)
	if err := tpl.BindCtx(ctx); err != nil {
		t.Fatal(err)
	}
	ctx.Set("a", "y")
	if tpl.Pending() {
		t.Errorf("template without a scheduler has a pending update")
	}
	if err := tpl.Update(); err != nil {
		t.Fatal(err)
	}
	if got := stripFences(htmldom.RenderChildren(container)); got != "<p>y</p>" {
		t.Errorf("rendered %q", got)
	}
}

func TestTemplate_RootReplacement(t *testing.T) {
	container, _ := htmldom.Parse(`<ul><li for="x in l">{{ x }}</li></ul>`)
	clock := sched.NewManual()
	tpl, err := New(container.ChildNodes()[0], Options{Scheduler: clock, Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	ctx := scope.FromMap(map[string]any{"l": []any{1, 2}}, nil)
	if err := tpl.BindCtx(ctx); err != nil {
		t.Fatal(err)
	}
	if got := stripFences(htmldom.Render(container)); got != "<ul><li>1</li><li>2</li></ul>" {
		t.Errorf("rendered %q", got)
	}

	getList(t, ctx, "l").Append(3)
	clock.Advance(10 * time.Millisecond)
	if got := stripFences(htmldom.Render(container)); got != "<ul><li>1</li><li>2</li><li>3</li></ul>" {
		t.Errorf("rendered %q after appending", got)
	}
	if len(tpl.Nodes()) != 3 {
		t.Errorf("Nodes() has %d nodes, want 3", len(tpl.Nodes()))
	}
}

func TestTemplate_Rebind(t *testing.T) {
	f := setup(t, `<p>{{ a }}</p>`, map[string]any{"a": 1})
	ctx2 := scope.FromMap(map[string]any{"a": 2}, nil)
	if err := f.tpl.BindCtx(ctx2); err != nil {
		t.Fatal(err)
	}
	if got := f.html(); got != "<p>2</p>" {
		t.Errorf("rendered %q after rebinding", got)
	}
	f.ctx.Set("a", 3)
	if f.tpl.Pending() {
		t.Errorf("old context still bound")
	}
}

func TestInterpolatedAttrs(t *testing.T) {
	f := setup(t, `<a href="/x" class="item {{ cls }}">link</a>`, map[string]any{"cls": "big"})
	a := f.tpl.Nodes()[0]
	if v, _ := a.GetAttribute("class"); v != "item big" {
		t.Errorf("class=%q", v)
	}
	if v, _ := a.GetAttribute("href"); v != "/x" {
		t.Errorf("href=%q", v)
	}
	f.ctx.Set("cls", "small")
	f.tick()
	if v, _ := a.GetAttribute("class"); v != "item small" {
		t.Errorf("class=%q after the update", v)
	}
	if f.tpl.Nodes()[0] != a {
		t.Errorf("element replaced by an attribute update")
	}
}

func TestInterpolatedAttrs_InLoop(t *testing.T) {
	f := setup(t, `<ul><li for="c in cs" class="{{ c }}">{{ c }}</li></ul>`,
		map[string]any{"cs": []any{"a", "b"}})
	if got := f.html(); got != `<ul><li class="a">a</li><li class="b">b</li></ul>` {
		t.Errorf("rendered %q", got)
	}
}

func TestText_Static(t *testing.T) {
	f := setup(t, `<p>plain <!-- note --> text</p>`, nil)
	if got := f.html(); got != "<p>plain <!-- note --> text</p>" {
		t.Errorf("rendered %q", got)
	}
}

func TestText_UndefinedRendersEmpty(t *testing.T) {
	f := setup(t, `<p>[{{ missing.attr }}]</p>`, nil)
	if got := f.html(); got != "<p>[]</p>" {
		t.Errorf("rendered %q", got)
	}
}

func TestText_ParseError(t *testing.T) {
	container, _ := htmldom.Parse(`<div><p>{{ 1 + }}</p></div>`)
	_, err := New(container.ChildNodes()[0], Options{})
	e, ok := err.(*Error)
	if !ok || e.Plugin != "text" {
		t.Errorf("New -> %v, want a text plugin error", err)
	}
}

func TestText_ArithmeticErrorRendersEmpty(t *testing.T) {
	f := setup(t, `<p>{{ [1] * n }}|{{ 2 ** m }}</p>`, map[string]any{"n": 1, "m": 3})
	if got := f.html(); got != "<p>[1]|8</p>" {
		t.Errorf("rendered %q", got)
	}
	f.ctx.Set("n", 1<<62)
	f.ctx.Set("m", 64)
	f.tick()
	if got := f.html(); got != "<p>|</p>" {
		t.Errorf("rendered %q after overflowing", got)
	}
}
