package options

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeEnvOrdersWellKnownKeysFirst(t *testing.T) {
	defaults := map[string]string{"PATH": "/bin", "HOME": "/root", "TERM": "xterm", "LANG": "C.UTF-8"}
	user := map[string]string{"CUSTOM_B": "2", "CUSTOM_A": "1"}

	got := MergeEnv(defaults, user)
	require.Equal(t, []string{
		"PATH=/bin", "HOME=/root", "TERM=xterm", "LANG=C.UTF-8",
		"CUSTOM_A=1", "CUSTOM_B=2",
	}, got)
}

func TestMergeEnvUserOverridesDefault(t *testing.T) {
	defaults := map[string]string{"PATH": "/bin"}
	user := map[string]string{"PATH": "/custom/bin"}

	got := MergeEnv(defaults, user)
	require.Equal(t, []string{"PATH=/custom/bin"}, got)
}

func TestParseEnv(t *testing.T) {
	k, v, err := ParseEnv("KEY=VALUE")
	require.NoError(t, err)
	require.Equal(t, "KEY", k)
	require.Equal(t, "VALUE", v)
}

func TestParseEnvWithEqualsInValue(t *testing.T) {
	k, v, err := ParseEnv("KEY=a=b=c")
	require.NoError(t, err)
	require.Equal(t, "KEY", k)
	require.Equal(t, "a=b=c", v)
}

func TestParseEnvRejectsMissingEquals(t *testing.T) {
	_, _, err := ParseEnv("NOEQUALS")
	require.Error(t, err)
}

func TestParseEnvRejectsEmptyKey(t *testing.T) {
	_, _, err := ParseEnv("=value")
	require.Error(t, err)
}
