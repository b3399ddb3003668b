//go:build linux

package sandbox

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Chroot performs step 4: if dir is non-empty, chroot into it and chdir to
// "/". The caller must have already confirmed dir sits on a filesystem
// distinct from "/" — this package does not verify that precondition. A
// future pivot_root + umount of the old root is deliberately not attempted
// here, since unprivileged umount is commonly forbidden by the host.
func Chroot(dir string) error {
	if dir == "" {
		return nil
	}
	if err := unix.Chroot(dir); err != nil {
		return fmt.Errorf("chroot %s: %w", dir, err)
	}
	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("chdir / after chroot: %w", err)
	}
	return nil
}
