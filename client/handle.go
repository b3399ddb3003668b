//go:build linux

package client

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"github.com/talonforge/spawnbox/forkserver"
	"github.com/talonforge/spawnbox/protocol"
	"github.com/talonforge/spawnbox/reexec"
	"golang.org/x/sys/unix"
)

// ChildProcess is what Spawn hands back: the subspawner's pid (reparented
// to this process directly, see forkserver's cloneWithParent) and the three
// stdio fds, already wrapped as *os.File.
type ChildProcess struct {
	Pid    int
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// SpawnerHandle owns one long-lived spawner process and its control socket.
// Not safe for concurrent Spawn calls from multiple goroutines; running
// several entry points concurrently means opening one handle per spawner
// process instead.
type SpawnerHandle struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	ctrl     *os.File
	poisoned bool
}

// Open starts a spawner process running entryPoint, having it run preloads
// in order before accepting any spawn. env replaces the spawner's
// environment wholly; it does not affect this process's own environment.
func Open(entryPoint string, env, preloads []string) (*SpawnerHandle, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: socketpair: %v", ErrStartup, err)
	}
	parentEnd := os.NewFile(uintptr(fds[0]), "spawner-control")
	childEnd := os.NewFile(uintptr(fds[1]), "spawner-control-child")
	defer childEnd.Close()

	cmd, err := reexec.Command(forkserver.SpawnerName, forkserver.EncodeArgs(entryPoint, preloads, env)...)
	if err != nil {
		parentEnd.Close()
		return nil, fmt.Errorf("%w: %v", ErrStartup, err)
	}
	// ExtraFiles[0] lands on fd 3 in the child, forkserver.ControlFd.
	cmd.ExtraFiles = []*os.File{childEnd}
	cmd.Stdin = nil
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		parentEnd.Close()
		return nil, fmt.Errorf("%w: start spawner: %v", ErrStartup, err)
	}

	return &SpawnerHandle{cmd: cmd, ctrl: parentEnd}, nil
}

// Spawn issues one SPAWN request and returns the resulting child.
// A fork failure in the spawner (StatusForkFailed) does not poison the
// handle; a malformed reply or transport error does.
func (h *SpawnerHandle) Spawn(processName string, sandboxCfg protocol.SandboxConfig, args [][]byte) (*ChildProcess, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.poisoned {
		return nil, ErrPoisoned
	}

	req := protocol.SpawnRequest{
		ID:            uuid.New(),
		ProcessName:   processName,
		SandboxConfig: sandboxCfg,
		Args:          args,
	}

	if err := protocol.WriteFrame(int(h.ctrl.Fd()), req.Encode()); err != nil {
		h.poisoned = true
		return nil, fmt.Errorf("client: write spawn request: %w", err)
	}

	payload, fds, err := protocol.ReadFrameWithFds(int(h.ctrl.Fd()))
	if err != nil {
		h.poisoned = true
		if err == protocol.ErrEOF {
			return nil, ErrStartup
		}
		return nil, fmt.Errorf("%w: %v", ErrPoisoned, err)
	}

	reply, err := protocol.DecodeSpawnReply(payload)
	if err != nil {
		h.poisoned = true
		return nil, fmt.Errorf("%w: %v", ErrPoisoned, err)
	}

	switch reply.Status {
	case protocol.StatusOK:
		if len(fds) != protocol.MaxFds {
			h.poisoned = true
			return nil, fmt.Errorf("%w: spawn reply carried %d fds, want %d", ErrPoisoned, len(fds), protocol.MaxFds)
		}
		return &ChildProcess{
			Pid:    int(reply.Pid),
			Stdin:  os.NewFile(uintptr(fds[0]), "child-stdin"),
			Stdout: os.NewFile(uintptr(fds[1]), "child-stdout"),
			Stderr: os.NewFile(uintptr(fds[2]), "child-stderr"),
		}, nil
	case protocol.StatusForkFailed:
		return nil, ErrSpawnFork
	default:
		h.poisoned = true
		return nil, fmt.Errorf("%w: spawn rejected with status %s", ErrPoisoned, reply.Status)
	}
}

// Close closes the control socket and reaps the spawner process.
func (h *SpawnerHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	closeErr := h.ctrl.Close()
	waitErr := h.cmd.Wait()
	if closeErr != nil {
		return closeErr
	}
	return waitErr
}
