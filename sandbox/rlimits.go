//go:build linux

package sandbox

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ApplyRlimits performs step 6: disable core dumps unless enableCoredumps,
// and set soft limits on AS, NPROC, FSIZE and NOFILE from the given
// defaults. Hard limits are left at whatever the kernel/outer environment
// already enforces; only the soft limit is set, capped at the hard limit.
func ApplyRlimits(limits Rlimits, enableCoredumps bool) error {
	if err := setSoftLimit(unix.RLIMIT_AS, limits.AS); err != nil {
		return fmt.Errorf("set RLIMIT_AS: %w", err)
	}
	if err := setSoftLimit(unix.RLIMIT_NPROC, limits.NProc); err != nil {
		return fmt.Errorf("set RLIMIT_NPROC: %w", err)
	}
	if err := setSoftLimit(unix.RLIMIT_FSIZE, limits.FSize); err != nil {
		return fmt.Errorf("set RLIMIT_FSIZE: %w", err)
	}
	if err := setSoftLimit(unix.RLIMIT_NOFILE, limits.NoFile); err != nil {
		return fmt.Errorf("set RLIMIT_NOFILE: %w", err)
	}

	coreLimit := uint64(0)
	if enableCoredumps {
		var rlim unix.Rlimit
		if err := unix.Getrlimit(unix.RLIMIT_CORE, &rlim); err != nil {
			return fmt.Errorf("get RLIMIT_CORE: %w", err)
		}
		coreLimit = rlim.Max
	}
	if err := setSoftLimit(unix.RLIMIT_CORE, coreLimit); err != nil {
		return fmt.Errorf("set RLIMIT_CORE: %w", err)
	}
	return nil
}

func setSoftLimit(resource int, soft uint64) error {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(resource, &rlim); err != nil {
		return err
	}
	rlim.Cur = soft
	if rlim.Max != unix.RLIM_INFINITY && soft > rlim.Max {
		rlim.Cur = rlim.Max
	}
	return unix.Setrlimit(resource, &rlim)
}
