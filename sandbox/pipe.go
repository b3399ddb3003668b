//go:build linux

package sandbox

import (
	"golang.org/x/sys/unix"
)

// MakePipe creates an O_CLOEXEC pipe, returning (readFd, writeFd).
func MakePipe() (int, int, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return -1, -1, err
	}
	return p[0], p[1], nil
}

// ClosePipe closes both ends of a pipe returned by MakePipe, ignoring
// already-closed fds.
func ClosePipe(rfd, wfd int) {
	_ = unix.Close(rfd)
	_ = unix.Close(wfd)
}
