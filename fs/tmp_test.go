package fs

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMountTmpCreatesWorldWritableStickyDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, MountTmp(base))

	info, err := os.Stat(path.Join(base, "tmp"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, os.FileMode(0o777), info.Mode().Perm())
	require.NotZero(t, info.Mode()&os.ModeSticky)
}

func TestMountTmpEmptyBaseIsNoop(t *testing.T) {
	require.NoError(t, MountTmp(""))
}
