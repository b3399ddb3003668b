package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetworkConfigValidateShape(t *testing.T) {
	cases := []struct {
		name    string
		cfg     *NetworkConfig
		wantErr bool
	}{
		{"nil config is valid", nil, false},
		{"valid /30 peer", &NetworkConfig{
			KernelVethName: "veth-k0", ChildVethName: "eth0",
			KernelIPv4: "10.0.0.1/30", ChildIPv4: "10.0.0.2/30",
			ChildIPv4Gateway: "10.0.0.1",
		}, false},
		{"valid /24 peer", &NetworkConfig{
			KernelVethName: "veth-k0", ChildVethName: "eth0",
			KernelIPv4: "10.0.0.1/24", ChildIPv4: "10.0.0.2/24",
			ChildIPv4Gateway: "10.0.0.1",
		}, false},
		{"missing veth names", &NetworkConfig{
			KernelIPv4: "10.0.0.1/30", ChildIPv4: "10.0.0.2/30",
			ChildIPv4Gateway: "10.0.0.1",
		}, true},
		{"bad child cidr", &NetworkConfig{
			KernelVethName: "veth-k0", ChildVethName: "eth0",
			KernelIPv4: "10.0.0.1/30", ChildIPv4: "not-a-cidr",
			ChildIPv4Gateway: "10.0.0.1",
		}, true},
		{"disallowed prefix length", &NetworkConfig{
			KernelVethName: "veth-k0", ChildVethName: "eth0",
			KernelIPv4: "10.0.0.1/28", ChildIPv4: "10.0.0.2/28",
			ChildIPv4Gateway: "10.0.0.1",
		}, true},
		{"gateway not an ip", &NetworkConfig{
			KernelVethName: "veth-k0", ChildVethName: "eth0",
			KernelIPv4: "10.0.0.1/30", ChildIPv4: "10.0.0.2/30",
			ChildIPv4Gateway: "nope",
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.ValidateShape()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDefaultSandboxConfig(t *testing.T) {
	cfg := DefaultSandboxConfig()
	require.True(t, cfg.DropCapabilities)
	require.False(t, cfg.SkipSandboxSeccomp)
	require.False(t, cfg.EnableCoredumps)
	require.Nil(t, cfg.Network)
}

func TestDecodeSandboxConfigUnknownTag(t *testing.T) {
	cfg := DefaultSandboxConfig()
	buf := cfg.encode(nil)
	buf[len(buf)-1] = 0x7f // corrupt the network tag byte
	_, _, err := decodeSandboxConfig(buf)
	require.ErrorIs(t, err, ErrProtocol)
}
