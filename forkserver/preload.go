package forkserver

import "fmt"

// Preload is a one-time initialization routine run before the control loop
// starts, so its cost is paid exactly once and every subsequently forked
// child inherits the resulting state copy-on-write.
type Preload func() error

var preloads = map[string]Preload{}

// RegisterPreload adds name to the preload table, mirroring Register's
// pre-fork population discipline.
func RegisterPreload(name string, fn Preload) {
	preloads[name] = fn
}

// RunPreloads executes each named preload in order. Any failure is fatal to
// the caller: a preload failure terminates the spawner with a nonzero exit
// before it has ever accepted a spawn request.
func RunPreloads(names []string) error {
	for _, name := range names {
		fn, ok := preloads[name]
		if !ok {
			return fmt.Errorf("forkserver: unknown preload %q", name)
		}
		if err := fn(); err != nil {
			return fmt.Errorf("forkserver: preload %q failed: %w", name, err)
		}
	}
	return nil
}
