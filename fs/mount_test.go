//go:build linux

package fs

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBindMountRejectsEmptyFields(t *testing.T) {
	require.Error(t, BindMount("", MountSpec{Host: "/dev/null", Dest: "/dev/null"}))
	require.Error(t, BindMount("/base", MountSpec{Dest: "/dev/null"}))
	require.Error(t, BindMount("/base", MountSpec{Host: "/dev/null"}))
}

func TestBindMountRejectsMissingSource(t *testing.T) {
	base := t.TempDir()
	require.Error(t, BindMount(base, MountSpec{Host: "/no/such/device", Dest: "/dev/null"}))
}

func TestBindMountRejectsSymlinkSource(t *testing.T) {
	base := t.TempDir()
	link := path.Join(base, "link")
	require.NoError(t, os.Symlink("/etc/hosts", link))

	err := BindMount(base, MountSpec{Host: link, Dest: "/etc/hosts"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "symlink")
}
