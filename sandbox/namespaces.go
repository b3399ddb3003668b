//go:build linux

package sandbox

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Unshare performs step 1 of sandbox construction: unshare user, PID, IPC,
// UTS, mount and network namespaces atomically in a single call. The
// network namespace is unshared whether or not withNetwork is set, so a
// child without a NetworkConfig is left with an empty namespace holding
// only lo. Unsharing CLONE_NEWPID does not move the
// caller into the new PID namespace — only its future children are born
// into it; the fork in forkserver/spawn.go's child split is what produces a
// process actually living as PID 1 of the new namespace.
func Unshare(withNetwork bool) error {
	flags := unix.CLONE_NEWUSER |
		unix.CLONE_NEWPID |
		unix.CLONE_NEWIPC |
		unix.CLONE_NEWUTS |
		unix.CLONE_NEWNS |
		unix.CLONE_NEWNET

	if err := unix.Unshare(flags); err != nil {
		return fmt.Errorf("unshare: %w", err)
	}
	return nil
}
