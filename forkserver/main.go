//go:build linux

package forkserver

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/talonforge/spawnbox/logger"
	"github.com/talonforge/spawnbox/reexec"
	"github.com/talonforge/spawnbox/sandbox"
)

// SpawnerName is the reexec sentinel client.Open launches the current
// binary under (argv[0]) to select the spawner initializer.
const SpawnerName = "spawnbox-spawner"

// ControlFd is the well-known descriptor the control socket is handed to
// the spawner on: fd 3, the first slot after stdin/stdout/stderr, populated
// by client.Open via exec.Cmd.ExtraFiles.
const ControlFd = 3

// EncodeArgs builds the argv client.Open execs the spawner with (after the
// sentinel name), per the layout ParseArgs expects: entry point, preload
// identifiers, then environment pairs, each list length-prefixed so none of
// the three can run into each other regardless of content.
func EncodeArgs(entryPoint string, preloads, env []string) []string {
	args := make([]string, 0, 2+len(preloads)+len(env))
	args = append(args, entryPoint)
	args = append(args, strconv.Itoa(len(preloads)))
	args = append(args, preloads...)
	args = append(args, strconv.Itoa(len(env)))
	args = append(args, env...)
	return args
}

// ParseArgs reverses EncodeArgs.
func ParseArgs(argv []string) (entryPoint string, preloads, env []string, err error) {
	if len(argv) < 2 {
		return "", nil, nil, fmt.Errorf("forkserver: too few arguments")
	}
	entryPoint = argv[0]
	argv = argv[1:]

	nPreloads, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", nil, nil, fmt.Errorf("forkserver: bad preload count: %w", err)
	}
	argv = argv[1:]
	if len(argv) < nPreloads+1 {
		return "", nil, nil, fmt.Errorf("forkserver: truncated preload list")
	}
	preloads = argv[:nPreloads]
	argv = argv[nPreloads:]

	nEnv, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", nil, nil, fmt.Errorf("forkserver: bad env count: %w", err)
	}
	argv = argv[1:]
	if len(argv) < nEnv {
		return "", nil, nil, fmt.Errorf("forkserver: truncated env list")
	}
	env = argv[:nEnv]
	return entryPoint, preloads, env, nil
}

// Main is the reexec initializer registered under SpawnerName: reset
// environment, run preloads (fatal on failure, before a single spawn is
// ever accepted), then enter the control loop on ControlFd.
func Main() {
	logger.CreateLogger(&logger.LoggerOpts{LogLevel: slog.LevelWarn, LogFormat: logger.LogText})

	entryPoint, preloads, env, err := ParseArgs(os.Args[1:])
	if err != nil {
		logger.Log.Error("bad spawner arguments", slog.Any("err", err))
		os.Exit(1)
	}

	if err := ResetEnvironment(env); err != nil {
		logger.Log.Error("reset environment failed", slog.Any("err", err))
		os.Exit(1)
	}

	if err := RunPreloads(preloads); err != nil {
		logger.Log.Error("preload failed", slog.Any("err", err))
		os.Exit(1)
	}

	Run(ControlFd, Config{
		EntryPoint: entryPoint,
		Rlimits:    sandbox.DefaultRlimits(),
	})
	os.Exit(0)
}

func init() {
	reexec.Register(SpawnerName, Main)
}
