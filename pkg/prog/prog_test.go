package prog_test

import (
	"os"
	"testing"

	. "src.circular.dev/pkg/prog"
	"src.circular.dev/pkg/prog/progtest"
	"src.circular.dev/pkg/testutil"
)

var (
	Test         = progtest.Test
	ThatCircular = progtest.ThatCircular
)

func TestCommonFlagHandling(t *testing.T) {
	testutil.InTempDir(t)

	Test(t, testProgram{},
		ThatCircular("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatCircular("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatCircular("-help").
			WritesStdoutContaining("Usage: circular [flags] [template ...]"),

		ThatCircular("-cpuprofile", "cpuprof").DoesNothing(),
		ThatCircular("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
	)

	// Check for the effect of -cpuprofile. There isn't much to test beyond a
	// sanity check that the profile file now exists.
	_, err := os.Stat("cpuprof")
	if err != nil {
		t.Errorf("CPU profile file does not exist: %v", err)
	}
}

func TestRepeatableFlags(t *testing.T) {
	var got *Flags
	Test(t, testProgram{flags: &got},
		ThatCircular("-e", "1", "-e", "2", "-then", "x", "-data", "d.yaml", "-prefix", "tpl-").DoesNothing(),
	)
	if len(got.Expr) != 2 || got.Expr[0] != "1" || got.Expr[1] != "2" {
		t.Errorf("Expr = %q", got.Expr)
	}
	if len(got.Then) != 1 || got.Data != "d.yaml" || got.Prefix != "tpl-" {
		t.Errorf("Flags = %+v", got)
	}
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		ThatCircular().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		ThatCircular().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}),
		ThatCircular().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatCircular().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatCircular().ExitsWith(2).WritesStderrContaining("lorem ipsum\n"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatCircular().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatCircular().ExitsWith(0),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
	flags       **Flags
}

func (p testProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	if p.flags != nil {
		*p.flags = f
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}
