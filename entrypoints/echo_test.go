//go:build linux

package entrypoints

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunEchoJoinsArgsWithSpaces(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	code := runEcho([][]byte{[]byte("hello"), []byte("world")}, nil, w, nil)
	w.Close()
	require.Zero(t, code)

	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	require.Equal(t, "hello world\n", string(buf[:n]))
}

func TestRunEchoNoArgs(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	code := runEcho(nil, nil, w, nil)
	w.Close()
	require.Zero(t, code)

	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	require.Equal(t, "\n", string(buf[:n]))
}
