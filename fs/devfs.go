//go:build linux

package fs

import (
	"os"
	"path"

	"golang.org/x/sys/unix"
)

// devAllowlist is the minimal set of device nodes a populated chroot needs:
// enough for a typical entry point to read/write/seed randomness and talk to
// a controlling tty, nothing else.
var devAllowlist = []string{
	"/dev/null",
	"/dev/zero",
	"/dev/random",
	"/dev/urandom",
	"/dev/tty",
}

// MountDev creates base/dev and bind-mounts devAllowlist into it from the
// host. Unlike a general-purpose container runtime, the entry points this
// populates a chroot for are a closed, statically-known set of Go functions
// running under the seccomp filter installed in sandbox construction step 7,
// so there is no untrusted binary here that could abuse a devpts, shm or
// mqueue mount — MountDev doesn't create them.
func MountDev(base string) error {
	if base == "" {
		return unix.EINVAL
	}

	dev := path.Join(base, "/dev")
	if err := os.MkdirAll(dev, 0o755); err != nil {
		return err
	}

	for _, p := range devAllowlist {
		spec := MountSpec{Host: p, Dest: p, RO: false}
		if err := BindMount(base, spec); err != nil {
			// Best-effort: a host may simply lack one of these nodes.
			continue
		}
	}

	return nil
}
