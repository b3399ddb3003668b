package forkserver

import "os"

// EntryPoint is a registered dispatch target: a function the subspawner
// calls in-process, after sandbox construction, instead of exec'ing a
// binary. args are the opaque byte blobs from the SpawnRequest; stdin,
// stdout and stderr are already dup2'd onto fds 0/1/2 by the time the entry
// point runs, so most implementations never touch them directly, but they
// are passed through for entry points that want to manage buffering
// themselves.
type EntryPoint func(args [][]byte, stdin, stdout, stderr *os.File) int

var registry = map[string]EntryPoint{}

// Register adds name to the entry-point table. Must run from a package
// init() or otherwise complete before Open/Preload, since the table must be
// fixed before the first fork — every spawned child inherits the same map
// copy-on-write, and registering afterward would only affect the
// registering process, not its children.
func Register(name string, fn EntryPoint) {
	registry[name] = fn
}

// Lookup returns the entry point registered under name.
func Lookup(name string) (EntryPoint, bool) {
	fn, ok := registry[name]
	return fn, ok
}
