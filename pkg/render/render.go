// Package render implements the main subprogram of circular: it renders
// templates against data loaded from a file, and evaluates expressions.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/mattn/go-isatty"
	"src.circular.dev/pkg/diag"
	"src.circular.dev/pkg/expr"
	"src.circular.dev/pkg/logutil"
	"src.circular.dev/pkg/observe"
	"src.circular.dev/pkg/prog"
	"src.circular.dev/pkg/sched"
	"src.circular.dev/pkg/scope"
	"src.circular.dev/pkg/tpl"
	"src.circular.dev/pkg/vals"
)

var logger = logutil.GetLogger("[render] ")

// Program is the render subprogram.
type Program struct {
	// Interval of template updates after -then expressions; tpl.DefaultInterval
	// if zero.
	Interval time.Duration
}

// Run implements prog.Program.
func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if !f.JSON {
		diag.SetStyled(isatty.IsTerminal(fds[2].Fd()) || isatty.IsCygwinTerminal(fds[2].Fd()))
	}
	data := map[string]any{}
	if f.Data != "" {
		var err error
		data, err = LoadData(f.Data)
		if err != nil {
			return p.fail(fds[2], f, err)
		}
	}
	ctx := scope.FromMap(data, nil)

	if len(f.Expr) > 0 {
		if len(args) > 0 {
			return prog.BadUsage("-e cannot be used with templates")
		}
		for _, src := range f.Expr {
			v, err := Eval(ctx, src)
			if err != nil {
				return p.fail(fds[2], f, err)
			}
			if err := writeValue(fds[1], v, f.JSON); err != nil {
				return err
			}
		}
		return nil
	}
	if len(args) == 0 {
		return prog.BadUsage("no template given")
	}

	reg := tpl.NewRegistry()
	tpl.RegisterBuiltins(reg)
	reg.SetPrefix(f.Prefix)
	if len(f.Then) == 0 {
		pages, err := p.compile(fds[0], args, tpl.Options{Registry: reg})
		if err != nil {
			return p.fail(fds[2], f, err)
		}
		if err := bindAll(pages, ctx); err != nil {
			return p.fail(fds[2], f, err)
		}
		writePages(fds[1], pages)
		return nil
	}
	return p.runLive(fds, f, args, reg, ctx)
}

// Renders the pages, evaluates the -then expressions and waits for the pages
// to update themselves before rendering them again.
func (p Program) runLive(fds [3]*os.File, f *prog.Flags, args []string, reg *tpl.Registry, ctx *scope.Scope) error {
	loop := sched.NewLoop()
	opts := tpl.Options{Scheduler: loop, Interval: p.Interval, Registry: reg}
	pages, err := p.compile(fds[0], args, opts)
	if err != nil {
		return p.fail(fds[2], f, err)
	}
	interval := p.Interval
	if interval <= 0 {
		interval = tpl.DefaultInterval
	}

	var runErr error
	loop.Do(func() {
		if runErr = bindAll(pages, ctx); runErr != nil {
			loop.Return()
			return
		}
		writePages(fds[1], pages)
		for _, src := range f.Then {
			if _, runErr = Eval(ctx, src); runErr != nil {
				loop.Return()
				return
			}
		}
		loop.SetInterval(func() {
			for _, page := range pages {
				if page.Pending() {
					return
				}
			}
			writePages(fds[1], pages)
			loop.Return()
		}, interval)
	})
	loop.Run()
	for _, page := range pages {
		page.Unbind()
	}
	if runErr != nil {
		return p.fail(fds[2], f, runErr)
	}
	return nil
}

func (p Program) compile(stdin io.Reader, files []string, opts tpl.Options) ([]*Page, error) {
	pages := make([]*Page, len(files))
	for i, name := range files {
		var markup []byte
		var err error
		if name == "-" {
			markup, err = io.ReadAll(stdin)
		} else {
			markup, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, err
		}
		pages[i], err = Compile(string(markup), opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return pages, nil
}

func bindAll(pages []*Page, ctx *scope.Scope) error {
	for _, page := range pages {
		if err := page.Bind(ctx); err != nil {
			return err
		}
	}
	return nil
}

func writePages(w io.Writer, pages []*Page) {
	for _, page := range pages {
		fmt.Fprintln(w, page.HTML())
	}
}

var assignRe = regexp.MustCompile(`^([^=!<>]*[^=!<>\s])\s*=([^=].*)$`)

// Eval evaluates an expression against a context. The expression may also be
// an assignment like "a.b = 1", in which case the value is assigned and also
// returned.
func Eval(ctx *scope.Scope, src string) (any, error) {
	if m := assignRe.FindStringSubmatch(src); m != nil {
		target, err := expr.Parse(m[1])
		if err == nil && target.IsAssignable() {
			v, err := evalSource(ctx, m[2])
			if err != nil {
				return nil, err
			}
			target.BindCtx(ctx)
			defer target.Unbind()
			if err := target.Assign(v); err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	return evalSource(ctx, src)
}

func evalSource(ctx *scope.Scope, src string) (any, error) {
	n, err := expr.Parse(src)
	if err != nil {
		return nil, err
	}
	return n.EvalWith(ctx)
}

func writeValue(w io.Writer, v any, inJSON bool) error {
	if !inJSON {
		_, err := fmt.Fprintln(w, vals.Repr(v))
		return err
	}
	bs, err := json.Marshal(jsonValue(observe.Unwrap(v)))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", bs)
	return err
}

// Converts values that encoding/json doesn't support.
func jsonValue(v any) any {
	switch v := v.(type) {
	case []any:
		res := make([]any, len(v))
		for i, elem := range v {
			res[i] = jsonValue(elem)
		}
		return res
	case map[string]any:
		res := make(map[string]any, len(v))
		for k, elem := range v {
			res[k] = jsonValue(elem)
		}
		return res
	case map[any]any:
		res := make(map[string]any, len(v))
		for k, elem := range v {
			res[vals.ToString(k)] = jsonValue(elem)
		}
		return res
	case nil, bool, int, float64, string:
		return v
	}
	return vals.ToString(v)
}

// Shows err on w and returns an error that makes the program exit with 1.
func (p Program) fail(w io.Writer, f *prog.Flags, err error) error {
	logger.Println("failed:", err)
	if f.JSON {
		w.Write(errorToJSON(err))
		fmt.Fprintln(w)
	} else {
		diag.ShowError(w, err)
	}
	return prog.Exit(1)
}

// An auxiliary struct for converting errors with diagnostics information to
// JSON.
type errorInJSON struct {
	FileName string `json:"fileName,omitempty"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// An auxiliary struct for converting errors with only a message to JSON.
type simpleErrorInJSON struct {
	Message string `json:"message"`
}

// Converts the error into JSON.
func errorToJSON(err error) []byte {
	var e any
	var derr *diag.Error
	if errors.As(err, &derr) {
		c := derr.Context
		e = []any{errorInJSON{c.Name, c.From, c.To, err.Error()}}
	} else {
		e = []any{simpleErrorInJSON{err.Error()}}
	}
	jsonError, errMarshal := json.Marshal(e)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
