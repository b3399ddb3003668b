//go:build linux

package net

import (
	"fmt"
	stdnet "net"
	"syscall"

	"github.com/talonforge/spawnbox/protocol"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"
)

const vethMTU = 1500

// SetupVeth implements the network step of sandbox construction: called
// from inside the child's already-unshared network namespace, it creates a
// veth pair and moves the kernel-facing end out into the top-level Parent's
// network namespace. "Parent" here is reachable via getppid(): the
// subspawner was cloned with CLONE_PARENT (see forkserver/spawn.go), so its
// real OS parent is the original Parent process, not the spawner.
func SetupVeth(cfg *protocol.NetworkConfig) error {
	ledger := OpenLedger("")
	if err := ledger.Reserve(cfg.KernelVethName, unix.Getpid()); err != nil {
		return fmt.Errorf("reserve kernel veth name: %w", err)
	}

	hostNS, err := netns.GetFromPid(unix.Getppid())
	if err != nil {
		return fmt.Errorf("get parent netns: %w", err)
	}
	defer hostNS.Close()

	v := &netlink.Veth{
		LinkAttrs: netlink.LinkAttrs{Name: cfg.KernelVethName, MTU: vethMTU},
		PeerName:  cfg.ChildVethName,
	}
	if err := netlink.LinkAdd(v); err != nil && err != syscall.EEXIST {
		return fmt.Errorf("create veth pair: %w", err)
	}

	kernelLink, err := netlink.LinkByName(cfg.KernelVethName)
	if err != nil {
		return fmt.Errorf("lookup kernel veth: %w", err)
	}
	if err := netlink.LinkSetNsFd(kernelLink, int(hostNS)); err != nil {
		return fmt.Errorf("move kernel veth to parent netns: %w", err)
	}

	if err := bringUpChildSide(cfg); err != nil {
		return err
	}
	return configureKernelSide(cfg, hostNS)
}

// bringUpChildSide brings lo and the child veth up, assigns the child
// address, and installs the default route via the gateway. Runs in the
// child's own (already current) network namespace.
func bringUpChildSide(cfg *protocol.NetworkConfig) error {
	if lo, err := netlink.LinkByName("lo"); err == nil {
		_ = netlink.LinkSetUp(lo)
	}

	childLink, err := netlink.LinkByName(cfg.ChildVethName)
	if err != nil {
		return fmt.Errorf("lookup child veth: %w", err)
	}
	if err := netlink.LinkSetUp(childLink); err != nil {
		return fmt.Errorf("bring up child veth: %w", err)
	}
	if err := AssignAddr(childLink, cfg.ChildIPv4); err != nil {
		return fmt.Errorf("assign child address: %w", err)
	}

	gwIP := stdnet.ParseIP(cfg.ChildIPv4Gateway)
	if gwIP == nil {
		return fmt.Errorf("invalid gateway %q", cfg.ChildIPv4Gateway)
	}
	route := &netlink.Route{
		LinkIndex: childLink.Attrs().Index,
		Scope:     netlink.SCOPE_UNIVERSE,
		Gw:        gwIP,
		Dst:       &stdnet.IPNet{IP: stdnet.IPv4zero, Mask: stdnet.IPv4Mask(0, 0, 0, 0)},
	}
	if err := netlink.RouteReplace(route); err != nil && err != syscall.EEXIST {
		return fmt.Errorf("default route via %s: %w", gwIP, err)
	}
	return nil
}

// configureKernelSide enters the Parent's network namespace just long
// enough to bring the kernel veth end up and assign its address, then
// returns to the caller's current namespace.
func configureKernelSide(cfg *protocol.NetworkConfig, hostNS netns.NsHandle) error {
	origin, err := netns.Get()
	if err != nil {
		return err
	}
	defer func() {
		_ = netns.Set(origin)
		_ = origin.Close()
	}()

	if err := netns.Set(hostNS); err != nil {
		return fmt.Errorf("enter parent netns: %w", err)
	}

	link, err := netlink.LinkByName(cfg.KernelVethName)
	if err != nil {
		return fmt.Errorf("lookup kernel veth in parent netns: %w", err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("bring up kernel veth: %w", err)
	}
	if cfg.KernelIPv4 != "" {
		if err := AssignAddr(link, cfg.KernelIPv4); err != nil {
			return fmt.Errorf("assign kernel address: %w", err)
		}
	}
	return nil
}

// ReleaseVeth frees the kernel veth name reservation held by cfg. Called
// when a later sandbox construction step fails after SetupVeth already
// succeeded, so an aborted spawn doesn't hold the name reserved until some
// future Reserve call happens to notice the holding pid is dead.
func ReleaseVeth(cfg *protocol.NetworkConfig) error {
	if cfg == nil {
		return nil
	}
	return OpenLedger("").Release(cfg.KernelVethName)
}

// EnsureLoopbackOnly brings up lo when no NetworkConfig is present, so the
// child still has a working loopback inside its empty network namespace.
func EnsureLoopbackOnly() error {
	link, err := netlink.LinkByName("lo")
	if err != nil {
		return fmt.Errorf("lookup lo: %w", err)
	}
	return netlink.LinkSetUp(link)
}
