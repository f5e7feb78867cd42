// Package progtest contains utilities for testing [prog.Program]
// implementations.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.circular.dev/pkg/prog"
	"src.circular.dev/pkg/testutil"
)

// Case is a test case for Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exit   int
	stdout output
	stderr output
}

type output struct {
	content  string
	partial  bool
	matchAny bool
}

func (o output) matches(s string) bool {
	switch {
	case o.matchAny:
		return true
	case o.partial:
		return strings.Contains(s, o.content)
	default:
		return s == o.content
	}
}

// ThatCircular returns a new Case with the specified CLI arguments.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "circular -e 1" writes "1\n" to
// stdout reads:
//
//	ThatCircular("-e", "1").WritesStdout("1\n")
func ThatCircular(args ...string) Case {
	return Case{args: append([]string{"circular"}, args...)}
}

// WithStdin returns an altered Case that provides the given input to stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatCircular("-help").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program to return with
// the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that requires the program to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program to
// write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program to
// write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// WritesStderrAnything returns an altered Case that accepts any output on
// stderr.
func (c Case) WritesStderrAnything() Case {
	c.want.stderr = output{matchAny: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			r := run(p, c.args, c.stdin)
			if r.exit != c.want.exit {
				t.Errorf("got exit %v, want %v", r.exit, c.want.exit)
			}
			if !c.want.stdout.matches(r.stdout.content) {
				t.Errorf("got stdout %q, want %s", r.stdout.content, c.want.stdout.describe())
			}
			if !c.want.stderr.matches(r.stderr.content) {
				t.Errorf("got stderr %q, want %s", r.stderr.content, c.want.stderr.describe())
			}
		})
	}
}

func (o output) describe() string {
	switch {
	case o.matchAny:
		return "anything"
	case o.partial:
		return "containing " + quote(o.content)
	default:
		return quote(o.content)
	}
}

func quote(s string) string { return `"` + strings.ReplaceAll(s, "\n", `\n`) + `"` }

// Run runs a Program with the given arguments. It returns the Program's exit
// code and output to stdout and stderr.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	r := run(p, append([]string{"circular"}, args...), "")
	return r.exit, r.stdout.content, r.stderr.content
}

func run(p prog.Program, args []string, stdin string) result {
	r0, w0 := testutil.MustPipe()
	go func() {
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	r1, w1 := testutil.MustPipe()
	r2, w2 := testutil.MustPipe()
	// Drain the pipes while the program runs, so that it doesn't block when
	// it writes more than the pipe can buffer.
	stdoutCh := readAllAsync(r1)
	stderrCh := readAllAsync(r2)

	exit := prog.Run([3]*os.File{r0, w1, w2}, args, p)
	w1.Close()
	w2.Close()
	r0.Close()
	return result{exit, output{content: <-stdoutCh}, output{content: <-stderrCh}}
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(testutil.MustReadAllAndClose(r))
	}()
	return ch
}
