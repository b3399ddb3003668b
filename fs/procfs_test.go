//go:build linux

package fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMountProcRejectsEmptyBase(t *testing.T) {
	require.Error(t, MountProc(""))
}
