//go:build linux

package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowSetIncludesBaseSyscalls(t *testing.T) {
	set := allowSet(nil)
	for _, name := range baseAllowedSyscalls {
		require.Contains(t, set, name)
	}
}

func TestAllowSetMergesExtraSyscalls(t *testing.T) {
	set := allowSet([]string{"mount", "chroot"})
	require.Contains(t, set, "mount")
	require.Contains(t, set, "chroot")
	require.Contains(t, set, "clone")
}

func TestAllowSetDeduplicatesOverlap(t *testing.T) {
	set := allowSet([]string{"read", "write"})
	require.Len(t, set, len(baseAllowedSyscalls))
}
