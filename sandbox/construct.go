//go:build linux

package sandbox

import (
	"log/slog"

	"github.com/talonforge/spawnbox/logger"
	spawnnet "github.com/talonforge/spawnbox/net"
	"github.com/talonforge/spawnbox/protocol"
	"golang.org/x/sys/unix"
)

// Construct runs the sandbox construction sequence in the mandated
// order: each step disables privileges the next step depends on, so
// reordering breaks either the security property or a syscall precondition.
// On failure it logs the cause and returns the step's exit code; the caller
// is expected to os.Exit with it immediately, before any user code runs.
func Construct(opts ConstructOptions, extraAllowedSyscalls []string) int {
	cfg := opts.Config

	// euid/egid must be captured here, before Unshare: once the user
	// namespace is unshared and still unmapped, Geteuid/Getegid report the
	// overflow id rather than the id the kernel expects in uid_map/gid_map.
	euid := unix.Geteuid()
	egid := unix.Getegid()

	if err := Unshare(cfg.Network != nil); err != nil {
		logger.Log.Error("unshare namespaces failed", slog.Any("err", err))
		return ExitUnshareFailed
	}

	if err := ConfigureIdentity(euid, egid); err != nil {
		logger.Log.Error("uid/gid mapping failed", slog.Any("err", err))
		return ExitIDMapFailed
	}

	if err := setupNetwork(cfg.Network); err != nil {
		logger.Log.Error("network setup failed", slog.Any("err", err))
		return ExitNetworkFailed
	}

	if err := Chroot(cfg.ChrootDir); err != nil {
		logger.Log.Error("chroot failed", slog.Any("err", err))
		releaseVethOnFailure(cfg.Network)
		return ExitFilesystemFailed
	}

	if cfg.DropCapabilities {
		if err := DropAllCapabilities(); err != nil {
			logger.Log.Error("capability drop failed", slog.Any("err", err))
			releaseVethOnFailure(cfg.Network)
			return ExitCapabilitiesFailed
		}
	}

	if err := ApplyRlimits(opts.Rlimits, cfg.EnableCoredumps); err != nil {
		logger.Log.Error("rlimit setup failed", slog.Any("err", err))
		releaseVethOnFailure(cfg.Network)
		return ExitRlimitFailed
	}

	if !cfg.SkipSandboxSeccomp {
		if err := SetupSeccomp(extraAllowedSyscalls); err != nil {
			logger.Log.Error("seccomp setup failed", slog.Any("err", err))
			releaseVethOnFailure(cfg.Network)
			return ExitSeccompFailed
		}
	}

	return 0
}

// releaseVethOnFailure frees a reserved veth name once construction can no
// longer succeed, so a failed spawn doesn't hold the reservation until a
// future Reserve call notices the holding pid is gone. Best-effort: the
// subspawner is exiting either way.
func releaseVethOnFailure(cfg *protocol.NetworkConfig) {
	if err := spawnnet.ReleaseVeth(cfg); err != nil {
		logger.Log.Warn("veth release failed", slog.Any("err", err))
	}
}

// setupNetwork is construction step 3: when no NetworkConfig is present the
// child still gets an unshared, empty network namespace with only lo
// brought up; when present, a veth pair is created and wired per cfg.
func setupNetwork(cfg *protocol.NetworkConfig) error {
	if cfg == nil {
		return spawnnet.EnsureLoopbackOnly()
	}
	return spawnnet.SetupVeth(cfg)
}
