package protocol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSpawnRequestEncodeDecodeRoundTrip(t *testing.T) {
	req := SpawnRequest{
		ID:          uuid.New(),
		ProcessName: "worker-1",
		SandboxConfig: SandboxConfig{
			ChrootDir:          "/var/lib/spawnbox/jail",
			DropCapabilities:   true,
			SkipSandboxSeccomp: false,
			EnableCoredumps:    false,
			Network: &NetworkConfig{
				KernelVethName:   "veth-k0",
				ChildVethName:    "eth0",
				KernelIPv4:       "10.200.0.1/30",
				ChildIPv4:        "10.200.0.2/30",
				ChildIPv4Gateway: "10.200.0.1",
			},
		},
		Args: [][]byte{[]byte("hello"), []byte("world"), {}},
	}

	decoded, err := DecodeSpawnRequest(req.Encode())
	require.NoError(t, err)
	require.Equal(t, req.ID, decoded.ID)
	require.Equal(t, req.ProcessName, decoded.ProcessName)
	require.Equal(t, req.SandboxConfig, decoded.SandboxConfig)
	require.Equal(t, req.Args, decoded.Args)
}

func TestSpawnRequestEncodeDecodeNoNetwork(t *testing.T) {
	req := SpawnRequest{
		ID:            uuid.New(),
		ProcessName:   "t1",
		SandboxConfig: DefaultSandboxConfig(),
		Args:          [][]byte{[]byte("hello")},
	}

	decoded, err := DecodeSpawnRequest(req.Encode())
	require.NoError(t, err)
	require.Nil(t, decoded.SandboxConfig.Network)
	require.Equal(t, req.Args, decoded.Args)
}

func TestDecodeSpawnRequestTruncated(t *testing.T) {
	_, err := DecodeSpawnRequest([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeSpawnRequestImplausibleArgCount(t *testing.T) {
	req := SpawnRequest{ID: uuid.New(), SandboxConfig: DefaultSandboxConfig()}
	buf := req.Encode()
	// Corrupt the arg count (last 4 bytes) to an implausibly large value.
	buf[len(buf)-4] = 0xff
	buf[len(buf)-3] = 0xff
	buf[len(buf)-2] = 0xff
	buf[len(buf)-1] = 0xff
	_, err := DecodeSpawnRequest(buf)
	require.ErrorIs(t, err, ErrProtocol)
}
