// Package reexec lets a single compiled binary relaunch itself to run as a
// different logical process (here: the spawner), the same self-reexec idiom
// used by container runtimes to avoid shipping a second binary. A
// registered initializer is selected by the first argument of argv rather
// than a fork: the binary execs itself with that argument in position zero.
package reexec

import (
	"os"
	"os/exec"
)

var registry = map[string]func(){}

// Register associates name with an initializer run when Init finds name in
// argv[0]. Must be called from a package init() or otherwise before Init,
// since Init is expected to run very early in main.
func Register(name string, initializer func()) {
	registry[name] = initializer
}

// Init checks whether argv[0] names a registered initializer and, if so,
// runs it and returns true. main() should call this first and return
// immediately when it reports true.
func Init() bool {
	if len(os.Args) == 0 {
		return false
	}
	if initializer, ok := registry[os.Args[0]]; ok {
		initializer()
		return true
	}
	return false
}

// Command builds an *exec.Cmd that relaunches the current binary with argv[0]
// set to name, so that a subsequent Init() in the child selects the matching
// initializer. Extra carries the remaining arguments, available to the
// initializer via os.Args[1:].
func Command(name string, extra ...string) (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	cmd := &exec.Cmd{
		Path: self,
		Args: append([]string{name}, extra...),
	}
	return cmd, nil
}
