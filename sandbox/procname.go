//go:build linux

package sandbox

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// SetProcessName sets the kernel's comm field for the calling thread/process
// to name, truncated to 15 bytes as the kernel requires. Called by the
// subspawner right after dup2'ing stdio, before sandbox construction and
// the hand-off to the entry point.
func SetProcessName(name string) error {
	if len(name) > 15 {
		name = name[:15]
	}
	b := append([]byte(name), 0)
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0)
}
