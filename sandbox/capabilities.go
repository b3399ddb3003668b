//go:build linux

package sandbox

import (
	"fmt"

	"github.com/moby/sys/capability"
	"golang.org/x/sys/unix"
)

// DropAllCapabilities performs step 5: clear the bounding, permitted,
// effective, inheritable and ambient capability sets entirely, then set
// no_new_privs so a later exec-equivalent cannot regain privilege. The
// teacher's CapabilityOpts{Add,Drop} Docker-like allow-list collapses here
// to a single all-or-nothing drop, since the sandbox policy's
// drop_capabilities is a bool, not a curated set.
func DropAllCapabilities() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("get process capabilities: %w", err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("load process capabilities: %w", err)
	}

	caps.Clear(capability.BOUNDS)
	caps.Clear(capability.CAPS)
	caps.Clear(capability.AMBIENT)

	if err := caps.Apply(capability.CAPS | capability.BOUNDS | capability.AMBIENT); err != nil {
		return fmt.Errorf("apply dropped capabilities: %w", err)
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("prctl(NO_NEW_PRIVS): %w", err)
	}
	return nil
}
