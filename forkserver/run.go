//go:build linux

package forkserver

import (
	"errors"
	"log/slog"
	"runtime"

	"github.com/talonforge/spawnbox/logger"
	"github.com/talonforge/spawnbox/protocol"
	"github.com/talonforge/spawnbox/sandbox"
)

// Config carries what the control loop needs for every spawn it handles: a
// fixed entry point to dispatch to (one spawner handle runs exactly one
// entry point for its lifetime), the resource limit defaults, and any
// syscalls the entry point itself needs beyond the seccomp base allowlist.
type Config struct {
	EntryPoint           string
	Rlimits              sandbox.Rlimits
	ExtraAllowedSyscalls []string
}

// Run is the spawner's control loop: block on one SPAWN frame, handle it,
// reply, repeat, until EOF or a malformed frame. The
// spawner is deliberately single-threaded end to end — LockOSThread is held
// for the lifetime of the loop because a forking multi-threaded Go process
// only survives fork on the calling thread.
func Run(controlFd int, cfg Config) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		payload, err := protocol.ReadFrame(controlFd)
		if err != nil {
			if errors.Is(err, protocol.ErrEOF) {
				logger.Log.Info("control socket closed, exiting")
				return
			}
			logger.Log.Error("malformed frame, exiting", slog.Any("err", err))
			return
		}

		req, err := protocol.DecodeSpawnRequest(payload)
		if err != nil {
			logger.Log.Error("decode spawn request failed", slog.Any("err", err))
			reply := protocol.SpawnReply{Status: protocol.StatusDecodeFailed}
			_ = protocol.WriteFrame(controlFd, reply.Encode())
			return
		}

		if err := handleSpawn(controlFd, req, cfg.EntryPoint, cfg.Rlimits, cfg.ExtraAllowedSyscalls); err != nil {
			logger.Log.Error("spawn handling failed, exiting", slog.Any("err", err))
			return
		}
	}
}
