//go:build linux

package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestWriteReadFrameRoundTrip(t *testing.T) {
	a, b := socketpair(t)

	payload := []byte("spawn request payload")
	require.NoError(t, WriteFrame(a, payload))

	got, err := ReadFrame(b)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestWriteReadFrameEmptyPayload(t *testing.T) {
	a, b := socketpair(t)

	require.NoError(t, WriteFrame(a, nil))

	got, err := ReadFrame(b)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadFrameEOF(t *testing.T) {
	a, b := socketpair(t)
	require.NoError(t, unix.Close(a))

	_, err := ReadFrame(b)
	require.ErrorIs(t, err, ErrEOF)
}

func TestWriteReadFrameWithFdsRoundTrip(t *testing.T) {
	a, b := socketpair(t)

	devNullR, err := unix.Open("/dev/null", unix.O_RDONLY, 0)
	require.NoError(t, err)
	defer unix.Close(devNullR)

	rights := []int{devNullR, devNullR, devNullR}
	payload := []byte{byte(StatusOK), 0, 0, 0, 42}
	require.NoError(t, WriteFrameWithFds(a, payload, rights))

	got, fds, err := ReadFrameWithFds(b)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.Len(t, fds, MaxFds)
	for _, fd := range fds {
		_ = unix.Close(fd)
	}
}

func TestWriteFrameWithFdsRejectsWrongCount(t *testing.T) {
	a, _ := socketpair(t)
	err := WriteFrameWithFds(a, []byte("x"), []int{0, 1})
	require.Error(t, err)
}
