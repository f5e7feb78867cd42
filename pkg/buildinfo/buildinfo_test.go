package buildinfo

import (
	"fmt"
	"testing"

	. "src.circular.dev/pkg/prog/progtest"
	"src.circular.dev/pkg/testutil"
)

func TestProgram(t *testing.T) {
	testutil.Set(t, &VersionSuffix, "-test")
	v := Value()
	if v.Version != Version+"-test" {
		t.Errorf("Value().Version = %q", v.Version)
	}
	Test(t, Program{},
		ThatCircular("-version").WritesStdout(v.Version+"\n"),
		ThatCircular("-version", "-json").WritesStdout(mustToJSON(v.Version)+"\n"),

		ThatCircular("-buildinfo").WritesStdout(
			fmt.Sprintf("Version: %v\nGo version: %v\n", v.Version, v.GoVersion)),
		ThatCircular("-buildinfo", "-json").WritesStdout(mustToJSON(v)+"\n"),

		ThatCircular().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}
