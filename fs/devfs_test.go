//go:build linux

package fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMountDevRejectsEmptyBase(t *testing.T) {
	require.Error(t, MountDev(""))
}
