//go:build linux

package sandbox

import (
	"fmt"
	"os"
)

// ConfigureIdentity performs step 2: write /proc/self/{setgroups,uid_map,gid_map}
// mapping a single inner UID/GID (0) to euid/egid, the caller's real
// euid/egid as observed in the parent user namespace *before* Unshare ran.
// Geteuid/Getegid can no longer be trusted for this once Unshare has
// executed — inside the fresh, still-unmapped user namespace they report
// the overflow id (65534), not the id the kernel will actually accept in
// the single permitted uid_map/gid_map line. The mapping must happen
// immediately after Unshare, before any other namespace operation, and
// setgroups must be disabled before gid_map is written.
func ConfigureIdentity(euid, egid int) error {
	if err := os.WriteFile("/proc/self/setgroups", []byte("deny"), 0o644); err != nil {
		return fmt.Errorf("write setgroups: %w", err)
	}
	if err := writeIdentityMap("/proc/self/uid_map", euid); err != nil {
		return fmt.Errorf("write uid_map: %w", err)
	}
	if err := writeIdentityMap("/proc/self/gid_map", egid); err != nil {
		return fmt.Errorf("write gid_map: %w", err)
	}
	return nil
}

func writeIdentityMap(path string, outsideID int) error {
	line := fmt.Sprintf("0 %d 1\n", outsideID)
	return os.WriteFile(path, []byte(line), 0o644)
}
