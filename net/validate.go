package net

import (
	"fmt"
	stdnet "net"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/talonforge/spawnbox/protocol"
)

// ValidateConfig performs the CIDR-range checks protocol.NetworkConfig's
// ValidateShape defers: that child_ipv4_gateway actually lies within the
// child's subnet, and that kernel_ipv4/child_ipv4 describe the same-sized
// peer network. ValidateShape already checked the basic parse/mask shape.
func ValidateConfig(cfg *protocol.NetworkConfig) error {
	if cfg == nil {
		return nil
	}
	if err := cfg.ValidateShape(); err != nil {
		return err
	}

	_, childNet, err := stdnet.ParseCIDR(cfg.ChildIPv4)
	if err != nil {
		return fmt.Errorf("child_ipv4 %q: %w", cfg.ChildIPv4, err)
	}
	gwIP := stdnet.ParseIP(cfg.ChildIPv4Gateway)
	if gwIP == nil {
		return fmt.Errorf("child_ipv4_gateway %q is not an IP", cfg.ChildIPv4Gateway)
	}

	first, last := cidr.AddressRange(childNet)
	if !ipBetween(gwIP, first, last) {
		return fmt.Errorf("child_ipv4_gateway %s is outside child subnet %s", gwIP, childNet)
	}

	_, kernelNet, err := stdnet.ParseCIDR(cfg.KernelIPv4)
	if err != nil {
		return fmt.Errorf("kernel_ipv4 %q: %w", cfg.KernelIPv4, err)
	}
	childOnes, _ := childNet.Mask.Size()
	kernelOnes, _ := kernelNet.Mask.Size()
	if childOnes != kernelOnes {
		return fmt.Errorf("kernel_ipv4 and child_ipv4 must share a prefix length (/%d vs /%d)", kernelOnes, childOnes)
	}

	return nil
}

func ipBetween(ip, first, last stdnet.IP) bool {
	ip4, first4, last4 := ip.To4(), first.To4(), last.To4()
	if ip4 == nil || first4 == nil || last4 == nil {
		return false
	}
	for i := range ip4 {
		if ip4[i] < first4[i] {
			return false
		}
		if ip4[i] > first4[i] {
			break
		}
	}
	for i := range ip4 {
		if ip4[i] > last4[i] {
			return false
		}
		if ip4[i] < last4[i] {
			break
		}
	}
	return true
}
