package render

import (
	"testing"
	"time"

	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/prog/progtest"
	"src.circular.dev/pkg/scope"
	"src.circular.dev/pkg/testutil"
	"src.circular.dev/pkg/tpl"
)

var (
	Test         = progtest.Test
	ThatCircular = progtest.ThatCircular
)

const listTemplate = `<ul><li for="x in items">{{ x }}</li></ul>`

func setupFiles(t *testing.T) {
	testutil.InTempDir(t)
	testutil.MustWriteFile("d.yaml", "name: Jane\nitems: [1, 2]\n")
	testutil.MustWriteFile("list.html", listTemplate)
	testutil.MustWriteFile("name.html", `<p>Hello {{ name }}!</p>`)
	testutil.MustWriteFile("prefixed.html", `<ul><li tpl-for="x in items">{{ x }}</li></ul>`)
	testutil.MustWriteFile("bad.html", `<ul><li for="x of items"></li></ul>`)
}

func TestProgram_Eval(t *testing.T) {
	setupFiles(t)
	Test(t, Program{},
		ThatCircular("-e", "1 + 2").WritesStdout("3\n"),
		ThatCircular("-data", "d.yaml", "-e", "name", "-e", "items[1:]").
			WritesStdout("'Jane'\n[2]\n"),
		ThatCircular("-data", "d.yaml", "-json", "-e", "items", "-e", "name.upper()").
			WritesStdout("[1,2]\n\"JANE\"\n"),
		ThatCircular("-e", "1 +").
			ExitsWith(1).
			WritesStderrContaining("unexpected end of expression"),
		ThatCircular("-json", "-e", "1 +").
			ExitsWith(1).
			WritesStderrContaining(`"fileName":"[expression]"`),
		ThatCircular("-e", "1", "list.html").
			ExitsWith(2).
			WritesStderrContaining("-e cannot be used with templates\nUsage:"),
	)
}

func TestProgram_Render(t *testing.T) {
	setupFiles(t)
	Test(t, Program{},
		ThatCircular("-data", "d.yaml", "list.html").
			WritesStdout("<ul><li>1</li><li>2</li></ul>\n"),
		ThatCircular("-data", "d.yaml", "list.html", "name.html").
			WritesStdout("<ul><li>1</li><li>2</li></ul>\n<p>Hello Jane!</p>\n"),
		ThatCircular("-data", "d.yaml", "-").
			WithStdin(`<b>{{ len(items) }}</b>`).
			WritesStdout("<b>2</b>\n"),
		ThatCircular("-data", "d.yaml", "-prefix", "tpl-", "prefixed.html").
			WritesStdout("<ul><li>1</li><li>2</li></ul>\n"),
		ThatCircular("name.html").WritesStdout("<p>Hello !</p>\n"),
	)
}

func TestProgram_Errors(t *testing.T) {
	setupFiles(t)
	Test(t, Program{},
		ThatCircular().
			ExitsWith(2).
			WritesStderrContaining("no template given\nUsage:"),
		ThatCircular("-data", "missing.yaml", "list.html").
			ExitsWith(1).
			WritesStderrContaining("missing.yaml"),
		ThatCircular("missing.html").
			ExitsWith(1).
			WritesStderrContaining("missing.html"),
		ThatCircular("bad.html").
			ExitsWith(1).
			WritesStderrContaining("bad.html: for: "),
	)
}

func TestProgram_Then(t *testing.T) {
	setupFiles(t)
	Test(t, Program{Interval: time.Millisecond},
		ThatCircular("-data", "d.yaml", "-then", "items.append(3)", "list.html").
			WritesStdout("<ul><li>1</li><li>2</li></ul>\n<ul><li>1</li><li>2</li><li>3</li></ul>\n"),
		ThatCircular("-data", "d.yaml", "-then", "name = 'Joe'", "name.html").
			WritesStdout("<p>Hello Jane!</p>\n<p>Hello Joe!</p>\n"),
		ThatCircular("-data", "d.yaml", "-then", "name.nope()", "name.html").
			ExitsWith(1).
			WritesStdout("<p>Hello Jane!</p>\n").
			WritesStderrAnything(),
	)
}

func TestEval(t *testing.T) {
	ctx := scope.FromMap(map[string]any{"a": map[string]any{"b": 1}, "x": 1}, nil)
	if v, err := Eval(ctx, "a['b'] = 2"); v != 2 || err != nil {
		t.Errorf("Eval(assignment) -> %v, %v", v, err)
	}
	if v, _ := Eval(ctx, "a['b']"); v != 2 {
		t.Errorf("a['b'] is %v after the assignment", v)
	}
	if v, err := Eval(ctx, "x == 1"); v != true || err != nil {
		t.Errorf("Eval(x == 1) -> %v, %v", v, err)
	}
	if v, err := Eval(ctx, "x = x + 1"); v != 2 || err != nil {
		t.Errorf("Eval(x = x + 1) -> %v, %v", v, err)
	}
	if v, _ := ctx.Get("x"); v != 2 {
		t.Errorf("x is %v after the assignment", v)
	}
	if _, err := Eval(ctx, "True = 1"); err == nil {
		t.Errorf("assigning to a constant -> %v", err)
	}
}

func TestPage(t *testing.T) {
	p, err := Compile(`<i>{{ a }}</i> and <b>{{ a }}</b>`, tpl.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.HTML(); got != "" {
		t.Errorf("unbound page renders %q", got)
	}
	ctx := scope.FromMap(map[string]any{"a": []any{1}}, nil)
	if err := p.Bind(ctx); err != nil {
		t.Fatal(err)
	}
	if got := p.HTML(); got != "<i>[1]</i> and <b>[1]</b>" {
		t.Errorf("rendered %q", got)
	}
	v, _ := ctx.Get("a")
	v.(*observe.List).Append(2)
	if err := p.Update(); err != nil {
		t.Fatal(err)
	}
	if got := p.HTML(); got != "<i>[1, 2]</i> and <b>[1, 2]</b>" {
		t.Errorf("rendered %q after the update", got)
	}
	p.Unbind()
}
