package render

import (
	"regexp"

	"src.circular.dev/pkg/dom"
	"src.circular.dev/pkg/dom/htmldom"
	"src.circular.dev/pkg/scope"
	"src.circular.dev/pkg/tpl"
)

// Page is a template compiled from a markup fragment, living in a document of
// its own.
type Page struct {
	tpl *tpl.Template
}

// Compile compiles a markup fragment. The fragment may have any number of
// top-level nodes.
func Compile(markup string, opts tpl.Options) (*Page, error) {
	container, err := htmldom.NewDocument().Parse("<div>" + markup + "</div>")
	if err != nil {
		return nil, err
	}
	t, err := tpl.New(container, opts)
	if err != nil {
		return nil, err
	}
	return &Page{t}, nil
}

// Template returns the underlying template.
func (p *Page) Template() *tpl.Template { return p.tpl }

// Bind binds the page to a context and renders it.
func (p *Page) Bind(ctx *scope.Scope) error { return p.tpl.BindCtx(ctx) }

// Update applies pending changes.
func (p *Page) Update() error { return p.tpl.Update() }

// Pending reports whether the page has a scheduled update.
func (p *Page) Pending() bool { return p.tpl.Pending() }

// Unbind unbinds the page.
func (p *Page) Unbind() { p.tpl.Unbind() }

var fenceRe = regexp.MustCompile(`<!---->`)

// HTML renders the content of the page without the comments marking plugin
// outputs. It returns "" for an unbound page.
func (p *Page) HTML() string {
	var out string
	for _, n := range dom.Elements(p.tpl.Nodes()) {
		out += htmldom.RenderChildren(n)
	}
	return fenceRe.ReplaceAllLiteralString(out, "")
}
