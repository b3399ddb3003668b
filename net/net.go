//go:build linux

package net

import (
	stdnet "net"
	"syscall"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// AssignAddr assigns the given CIDR address to the specified link, skipping
// the call if the address is already present.
func AssignAddr(link netlink.Link, cidr string) error {
	ip, ipnet, err := stdnet.ParseCIDR(cidr)
	if err != nil {
		return err
	}

	addr := &netlink.Addr{
		IPNet: &stdnet.IPNet{
			IP:   ip,
			Mask: ipnet.Mask,
		},
	}

	addrs, _ := netlink.AddrList(link, unix.AF_INET)
	for _, a := range addrs {
		if a.IPNet.String() == addr.IPNet.String() {
			return nil
		}
	}

	if err := netlink.AddrAdd(link, addr); err != nil && err != syscall.EEXIST {
		return err
	}
	return nil
}
