//go:build linux

package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRlimits(t *testing.T) {
	limits := DefaultRlimits()
	require.Equal(t, uint64(1<<30), limits.AS)
	require.Equal(t, uint64(100), limits.NProc)
	require.Equal(t, uint64(1<<30), limits.FSize)
	require.Equal(t, uint64(1024), limits.NoFile)
}

func TestExitCodesAreSequentialFrom65(t *testing.T) {
	codes := []int{
		ExitUnshareFailed, ExitIDMapFailed, ExitNetworkFailed,
		ExitFilesystemFailed, ExitCapabilitiesFailed, ExitRlimitFailed,
		ExitSeccompFailed,
	}
	for i, code := range codes {
		require.Equal(t, 65+i, code)
	}
}
