//go:build linux

package forkserver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeParseArgsRoundTrip(t *testing.T) {
	entryPoint, preloads, env, err := ParseArgs(EncodeArgs("echo", []string{"bigmod", "netinit"}, []string{"PATH=/bin", "HOME=/root"}))
	require.NoError(t, err)
	require.Equal(t, "echo", entryPoint)
	require.Equal(t, []string{"bigmod", "netinit"}, preloads)
	require.Equal(t, []string{"PATH=/bin", "HOME=/root"}, env)
}

func TestEncodeParseArgsEmptyLists(t *testing.T) {
	entryPoint, preloads, env, err := ParseArgs(EncodeArgs("echo", nil, nil))
	require.NoError(t, err)
	require.Equal(t, "echo", entryPoint)
	require.Empty(t, preloads)
	require.Empty(t, env)
}

func TestParseArgsRejectsTruncatedInput(t *testing.T) {
	_, _, _, err := ParseArgs([]string{"echo"})
	require.Error(t, err)
}

func TestParseArgsRejectsBadPreloadCount(t *testing.T) {
	_, _, _, err := ParseArgs([]string{"echo", "notanumber"})
	require.Error(t, err)
}
