//go:build linux

package sandbox

import (
	"github.com/talonforge/spawnbox/protocol"
)

// ConstructOptions carries everything the sandbox construction sequence
// needs to run on the current process. It is built by the subspawner from
// the decoded SpawnRequest and never crosses a process boundary itself.
type ConstructOptions struct {
	Config      protocol.SandboxConfig
	ProcessName string
	Rlimits     Rlimits
}

// Rlimits are process-wide resource limit defaults: tunable at spawner
// startup, not part of per-spawn SandboxConfig.
type Rlimits struct {
	AS     uint64
	NProc  uint64
	FSize  uint64
	NoFile uint64
}

// DefaultRlimits returns the conservative ceiling applied when a caller
// doesn't override resource limits: 1GiB address space, 100 processes,
// 1GiB max file size, 1024 open files.
func DefaultRlimits() Rlimits {
	const gib = 1 << 30
	return Rlimits{
		AS:     1 * gib,
		NProc:  100,
		FSize:  1 * gib,
		NoFile: 1024,
	}
}
