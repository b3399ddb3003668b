//go:build linux

package fs

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetResolversWritesCustomNameservers(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, SetResolvers(base, []string{"10.0.0.1", "10.0.0.2"}))

	b, err := os.ReadFile(path.Join(base, "/etc/resolv.conf"))
	require.NoError(t, err)
	require.Equal(t, "nameserver 10.0.0.1\nnameserver 10.0.0.2\n", string(b))
}

func TestSetResolversFallsBackToDefaults(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, SetResolvers(base, nil))

	b, err := os.ReadFile(path.Join(base, "/etc/resolv.conf"))
	require.NoError(t, err)
	require.Equal(t, "nameserver 8.8.8.8\nnameserver 8.8.4.4\n", string(b))
}

func TestSetResolversReplacesSymlink(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(path.Join(base, "/etc"), 0o755))
	require.NoError(t, os.Symlink("/nowhere", path.Join(base, "/etc/resolv.conf")))

	require.NoError(t, SetResolvers(base, []string{"1.1.1.1"}))

	info, err := os.Lstat(path.Join(base, "/etc/resolv.conf"))
	require.NoError(t, err)
	require.Zero(t, info.Mode()&os.ModeSymlink)
}

func TestSetResolversRejectsEmptyBase(t *testing.T) {
	require.Error(t, SetResolvers("", nil))
}
