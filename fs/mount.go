//go:build linux

package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// MountSpec describes one bind mount from the host into a chroot target.
type MountSpec struct {
	Host string
	Dest string
	RO   bool
}

// BindMount bind-mounts a host path onto a target path under base, creating
// the target (directory or placeholder file, matching the source's type) if
// it doesn't already exist.
func BindMount(base string, spec MountSpec) error {
	if base == "" || spec.Host == "" || spec.Dest == "" {
		return unix.EINVAL
	}
	target := filepath.Join(base, spec.Dest)

	st := &unix.Stat_t{}
	if err := unix.Lstat(spec.Host, st); err != nil {
		return err
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
	case unix.S_IFREG, unix.S_IFCHR, unix.S_IFBLK, unix.S_IFIFO, unix.S_IFSOCK:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(target, os.O_CREATE, 0o644)
		if err != nil {
			return err
		}
		_ = f.Close()
	case unix.S_IFLNK:
		return fmt.Errorf("bind-mounting symlinks is not supported: %s", spec.Host)
	default:
		return fmt.Errorf("unsupported source file type: %s", spec.Host)
	}

	if err := unix.Mount(spec.Host, target, "", unix.MS_BIND|unix.MS_REC|unix.MS_NOSUID|unix.MS_NODEV, ""); err != nil {
		return err
	}

	if spec.RO {
		if err := unix.Mount("", target, "", unix.MS_BIND|unix.MS_REMOUNT|unix.MS_RDONLY|unix.MS_NOSUID|unix.MS_NODEV, ""); err != nil {
			return err
		}
	}
	return nil
}
