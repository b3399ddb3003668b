package protocol

import (
	"encoding/binary"
	"fmt"
	"net"
)

// NetworkConfig describes one veth pair connecting a sandboxed child to the
// host. All addresses are IPv4; KernelIPv4 and ChildIPv4 are in CIDR
// notation (/24 or /30) and ChildIPv4Gateway is a bare address.
type NetworkConfig struct {
	KernelVethName   string
	ChildVethName    string
	KernelIPv4       string
	ChildIPv4        string
	ChildIPv4Gateway string
}

// SandboxConfig is the per-spawn sandbox policy, serialized as its fixed
// fields followed by a tag byte (network present or not) and, when present,
// the network fields.
type SandboxConfig struct {
	ChrootDir          string
	Network            *NetworkConfig // nil means no network namespace peer
	DropCapabilities   bool
	SkipSandboxSeccomp bool
	EnableCoredumps    bool
}

// DefaultSandboxConfig returns the conservative default policy: capabilities
// are dropped, seccomp is installed, core dumps stay disabled.
func DefaultSandboxConfig() SandboxConfig {
	return SandboxConfig{
		DropCapabilities:   true,
		SkipSandboxSeccomp: false,
		EnableCoredumps:    false,
	}
}

const (
	netTagAbsent byte = 0
	netTagVeth   byte = 1
)

func encodeString(buf []byte, s string) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	buf = append(buf, n[:]...)
	return append(buf, s...)
}

func decodeString(buf []byte) (string, []byte, error) {
	if len(buf) < 4 {
		return "", nil, fmt.Errorf("%w: truncated string length", ErrProtocol)
	}
	n := binary.LittleEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint64(n) > uint64(len(buf)) {
		return "", nil, fmt.Errorf("%w: truncated string body", ErrProtocol)
	}
	return string(buf[:n]), buf[n:], nil
}

func encodeBool(buf []byte, b bool) []byte {
	if b {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func decodeBool(buf []byte) (bool, []byte, error) {
	if len(buf) < 1 {
		return false, nil, fmt.Errorf("%w: truncated bool", ErrProtocol)
	}
	return buf[0] != 0, buf[1:], nil
}

func (c SandboxConfig) encode(buf []byte) []byte {
	buf = encodeString(buf, c.ChrootDir)
	buf = encodeBool(buf, c.DropCapabilities)
	buf = encodeBool(buf, c.SkipSandboxSeccomp)
	buf = encodeBool(buf, c.EnableCoredumps)

	if c.Network == nil {
		return append(buf, netTagAbsent)
	}
	buf = append(buf, netTagVeth)
	buf = encodeString(buf, c.Network.KernelVethName)
	buf = encodeString(buf, c.Network.ChildVethName)
	buf = encodeString(buf, c.Network.KernelIPv4)
	buf = encodeString(buf, c.Network.ChildIPv4)
	buf = encodeString(buf, c.Network.ChildIPv4Gateway)
	return buf
}

func decodeSandboxConfig(buf []byte) (SandboxConfig, []byte, error) {
	var c SandboxConfig
	var err error

	if c.ChrootDir, buf, err = decodeString(buf); err != nil {
		return c, nil, err
	}
	if c.DropCapabilities, buf, err = decodeBool(buf); err != nil {
		return c, nil, err
	}
	if c.SkipSandboxSeccomp, buf, err = decodeBool(buf); err != nil {
		return c, nil, err
	}
	if c.EnableCoredumps, buf, err = decodeBool(buf); err != nil {
		return c, nil, err
	}

	if len(buf) < 1 {
		return c, nil, fmt.Errorf("%w: truncated sandbox config tag", ErrProtocol)
	}
	tag := buf[0]
	buf = buf[1:]

	switch tag {
	case netTagAbsent:
		return c, buf, nil
	case netTagVeth:
		net := &NetworkConfig{}
		if net.KernelVethName, buf, err = decodeString(buf); err != nil {
			return c, nil, err
		}
		if net.ChildVethName, buf, err = decodeString(buf); err != nil {
			return c, nil, err
		}
		if net.KernelIPv4, buf, err = decodeString(buf); err != nil {
			return c, nil, err
		}
		if net.ChildIPv4, buf, err = decodeString(buf); err != nil {
			return c, nil, err
		}
		if net.ChildIPv4Gateway, buf, err = decodeString(buf); err != nil {
			return c, nil, err
		}
		c.Network = net
		return c, buf, nil
	default:
		return c, nil, fmt.Errorf("%w: unknown sandbox config tag %d", ErrProtocol, tag)
	}
}

// ValidateShape checks that a NetworkConfig's veth names are present, that
// child_ipv4 parses as a /24 or /30 IPv4 CIDR, that kernel_ipv4 parses as a
// CIDR and that the gateway parses as an IP. Deeper validation (that the
// gateway actually lies within the child's subnet, and that kernel_ipv4
// shares child_ipv4's prefix length) is done by
// net.ValidateConfig, which has the CIDR-math dependency this package does
// not import.
func (n *NetworkConfig) ValidateShape() error {
	if n == nil {
		return nil
	}
	if n.KernelVethName == "" || n.ChildVethName == "" {
		return fmt.Errorf("network config: veth names must not be empty")
	}
	_, childNet, err := net.ParseCIDR(n.ChildIPv4)
	if err != nil {
		return fmt.Errorf("network config: child_ipv4 %q: %w", n.ChildIPv4, err)
	}
	if _, _, err := net.ParseCIDR(n.KernelIPv4); err != nil {
		return fmt.Errorf("network config: kernel_ipv4 %q: %w", n.KernelIPv4, err)
	}
	ones, bits := childNet.Mask.Size()
	if bits != 32 || (ones != 24 && ones != 30) {
		return fmt.Errorf("network config: child_ipv4 must be a /24 or /30, got /%d", ones)
	}
	if net.ParseIP(n.ChildIPv4Gateway) == nil {
		return fmt.Errorf("network config: child_ipv4_gateway %q is not an IP", n.ChildIPv4Gateway)
	}
	return nil
}
