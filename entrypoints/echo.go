//go:build linux

package entrypoints

import (
	"fmt"
	"os"

	"github.com/talonforge/spawnbox/forkserver"
)

func init() {
	forkserver.Register("echo", runEcho)
}

// runEcho writes each arg to stdout separated by spaces, followed by a
// trailing newline, and exits 0. It exercises the happy path of the spawn
// protocol end to end without depending on anything outside the sandbox.
func runEcho(args [][]byte, stdin, stdout, stderr *os.File) int {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(stdout, " ")
		}
		stdout.Write(a)
	}
	fmt.Fprintln(stdout)
	return 0
}
