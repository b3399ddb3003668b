//go:build linux

package fs

// PopulateChroot is a convenience helper for callers that pass a
// chroot_dir: it mounts proc, dev, /tmp and writes a minimal /etc inside
// base before the sandbox chroots into it. Populating the chroot target is
// left to the caller rather than done implicitly during construction, so
// this just offers the same primitives as an opt-in step instead of making
// every caller reimplement them.
func PopulateChroot(base string, nameservers []string, hostname string) error {
	if err := MountProc(base); err != nil {
		return err
	}
	if err := MountDev(base); err != nil {
		return err
	}
	if err := MountTmp(base); err != nil {
		return err
	}
	return SetupEtc(base, nameservers, hostname)
}
