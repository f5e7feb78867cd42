// Circular renders data-bound HTML templates. Templates are bound to data
// loaded from a YAML, TOML or JSON file, and may be rendered again after
// expressions given with -then change the data.
package main

import (
	"os"

	"src.circular.dev/pkg/buildinfo"
	"src.circular.dev/pkg/prog"
	"src.circular.dev/pkg/render"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program{}, render.Program{})))
}
