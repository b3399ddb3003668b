package net

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/talonforge/spawnbox/protocol"
)

func TestValidateConfigNil(t *testing.T) {
	require.NoError(t, ValidateConfig(nil))
}

func TestValidateConfigAcceptsGatewayInsideSubnet(t *testing.T) {
	cfg := &protocol.NetworkConfig{
		KernelVethName:   "veth-k0",
		ChildVethName:    "eth0",
		KernelIPv4:       "10.0.0.1/24",
		ChildIPv4:        "10.0.0.2/24",
		ChildIPv4Gateway: "10.0.0.1",
	}
	require.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfigRejectsGatewayOutsideSubnet(t *testing.T) {
	cfg := &protocol.NetworkConfig{
		KernelVethName:   "veth-k0",
		ChildVethName:    "eth0",
		KernelIPv4:       "10.0.0.1/30",
		ChildIPv4:        "10.0.0.2/30",
		ChildIPv4Gateway: "192.168.1.1",
	}
	require.Error(t, ValidateConfig(cfg))
}

func TestValidateConfigRejectsMismatchedPrefixLengths(t *testing.T) {
	cfg := &protocol.NetworkConfig{
		KernelVethName:   "veth-k0",
		ChildVethName:    "eth0",
		KernelIPv4:       "10.0.0.1/24",
		ChildIPv4:        "10.0.1.2/30",
		ChildIPv4Gateway: "10.0.1.1",
	}
	require.Error(t, ValidateConfig(cfg))
}

func TestValidateConfigRejectsBadShape(t *testing.T) {
	cfg := &protocol.NetworkConfig{
		ChildVethName: "eth0",
	}
	require.Error(t, ValidateConfig(cfg))
}
