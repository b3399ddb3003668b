//go:build linux

package forkserver

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/talonforge/spawnbox/logger"
	"github.com/talonforge/spawnbox/protocol"
	"github.com/talonforge/spawnbox/sandbox"
	"golang.org/x/sys/unix"
)

// cloneWithParent forks using clone(2) with CLONE_PARENT set, so the new
// process's kernel-level parent is the caller's own parent rather than the
// caller itself. This is the load-bearing trick behind the whole design
// (see handleSpawn and the second fork in runChild): it is what lets the
// original top-level Parent waitpid the returned pid directly even though
// the spawner (and, for the second fork, the subspawner) is the one calling
// fork. Only flags and the (unused, fork-style COW) stack argument are
// meaningful here since neither CLONE_PARENT_SETTID, CLONE_CHILD_SETTID nor
// CLONE_SETTLS is requested, so the remaining clone(2) arguments are safely
// left unset.
func cloneWithParent() (pid int, err error) {
	r1, _, errno := unix.RawSyscall(unix.SYS_CLONE, uintptr(unix.SIGCHLD|unix.CLONE_PARENT), 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(r1), nil
}

// handleSpawn handles one SPAWN frame: create the three stdio
// pipes, fork a subspawner reparented to the top-level Parent, reply with
// its pid and the parent ends of the pipes, and never waitpid it — the
// Parent does that directly since CLONE_PARENT made it the real parent.
func handleSpawn(controlFd int, req protocol.SpawnRequest, entryPoint string, rlimits sandbox.Rlimits, extraAllowedSyscalls []string) error {
	log := logger.Log.With(slog.String("request_id", req.ID.String()))

	stdinR, stdinW, err := sandbox.MakePipe()
	if err != nil {
		return replyForkFailed(controlFd, fmt.Errorf("stdin pipe: %w", err))
	}
	stdoutR, stdoutW, err := sandbox.MakePipe()
	if err != nil {
		sandbox.ClosePipe(stdinR, stdinW)
		return replyForkFailed(controlFd, fmt.Errorf("stdout pipe: %w", err))
	}
	stderrR, stderrW, err := sandbox.MakePipe()
	if err != nil {
		sandbox.ClosePipe(stdinR, stdinW)
		sandbox.ClosePipe(stdoutR, stdoutW)
		return replyForkFailed(controlFd, fmt.Errorf("stderr pipe: %w", err))
	}

	pid, err := cloneWithParent()
	if err != nil {
		sandbox.ClosePipe(stdinR, stdinW)
		sandbox.ClosePipe(stdoutR, stdoutW)
		sandbox.ClosePipe(stderrR, stderrW)
		return replyForkFailed(controlFd, err)
	}

	if pid == 0 {
		// Subspawner. Close the ends it does not use, wire the child's
		// stdio, drop the control socket, then build the sandbox.
		_ = unix.Close(stdinW)
		_ = unix.Close(stdoutR)
		_ = unix.Close(stderrR)
		_ = unix.Close(controlFd)

		runChild(req, entryPoint, rlimits, extraAllowedSyscalls, stdinR, stdoutW, stderrW)
		unix.Exit(0)
	}

	// Still the spawner. pid already exists or has already exited by the
	// time we observe it: fork returned, so it's safe to reply now.
	_ = unix.Close(stdinR)
	_ = unix.Close(stdoutW)
	_ = unix.Close(stderrW)

	log.Info("spawned subspawner", slog.Int("pid", pid))

	reply := protocol.SpawnReply{Status: protocol.StatusOK, Pid: int32(pid)}
	if err := protocol.WriteFrameWithFds(controlFd, reply.Encode(), []int{stdinW, stdoutR, stderrR}); err != nil {
		_ = unix.Close(stdinW)
		_ = unix.Close(stdoutR)
		_ = unix.Close(stderrR)
		return err
	}
	_ = unix.Close(stdinW)
	_ = unix.Close(stdoutR)
	_ = unix.Close(stderrR)
	return nil
}

// runChild dup2's stdio, sets the process title, runs sandbox construction,
// then performs a second fork: a second CLONE_PARENT chains the
// same reparenting trick so the eventual user process also lands directly
// under the top-level Parent, making SIGKILL-based subtree kill and
// waitpid both work against one PID. The subspawner exits immediately once
// the grandchild exists; it performs no supervising role afterward.
func runChild(req protocol.SpawnRequest, entryPoint string, rlimits sandbox.Rlimits, extraAllowedSyscalls []string, stdinR, stdoutW, stderrW int) {
	if err := unix.Dup2(stdinR, 0); err != nil {
		os.Exit(sandbox.ExitChildSetupFailed)
	}
	if err := unix.Dup2(stdoutW, 1); err != nil {
		os.Exit(sandbox.ExitChildSetupFailed)
	}
	if err := unix.Dup2(stderrW, 2); err != nil {
		os.Exit(sandbox.ExitChildSetupFailed)
	}
	_ = unix.Close(stdinR)
	_ = unix.Close(stdoutW)
	_ = unix.Close(stderrW)

	_ = sandbox.SetProcessName(req.ProcessName)

	if code := sandbox.Construct(sandbox.ConstructOptions{
		Config:      req.SandboxConfig,
		ProcessName: req.ProcessName,
		Rlimits:     rlimits,
	}, extraAllowedSyscalls); code != 0 {
		os.Exit(code)
	}

	pid, err := cloneWithParent()
	if err != nil {
		os.Exit(sandbox.ExitChildSetupFailed)
	}

	if pid == 0 {
		dispatch(entryPoint, req.Args)
		os.Exit(0)
	}

	// Subspawner's job ends here: the grandchild is already reparented to
	// the top-level Parent via CLONE_PARENT, so there is nothing left to
	// supervise or reap.
	os.Exit(0)
}

// dispatch runs the registered entry point in-process — no further exec.
func dispatch(entryPoint string, args [][]byte) {
	fn, ok := Lookup(entryPoint)
	if !ok {
		logger.Log.Error("unknown entry point", slog.String("entry_point", entryPoint))
		os.Exit(127)
	}
	os.Exit(fn(args, os.Stdin, os.Stdout, os.Stderr))
}

func replyForkFailed(controlFd int, cause error) error {
	logger.Log.Warn("fork failed", slog.Any("err", cause))
	reply := protocol.SpawnReply{Status: protocol.StatusForkFailed}
	return protocol.WriteFrame(controlFd, reply.Encode())
}
