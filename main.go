//go:build linux

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/talonforge/spawnbox/client"
	"github.com/talonforge/spawnbox/fs"
	"github.com/talonforge/spawnbox/logger"
	"github.com/talonforge/spawnbox/options"
	"github.com/talonforge/spawnbox/reexec"
	"github.com/talonforge/spawnbox/version"
	"golang.org/x/sys/unix"

	_ "github.com/talonforge/spawnbox/entrypoints"
)

/**
 * Application entry point. A single compiled binary plays two roles,
 * selected by argv[0]: the spawner (see forkserver.Main, registered via
 * reexec) and this parent-side demo CLI.
 */
func main() {
	if reexec.Init() {
		return
	}

	opts, err := options.ParseCli(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parsing error:", err)
		os.Exit(1)
	} else if opts == nil {
		os.Exit(0)
	}

	log := logger.CreateLogger(&logger.LoggerOpts{
		LogLevel:  opts.LogLevel,
		LogFormat: opts.LogFormat,
	})
	major, minor, patch := version.VersionDetails()
	log.Debug("starting", slog.String("major", major), slog.String("minor", minor), slog.String("patch", patch))
	log.Info("options", slog.Any("opts", opts))

	if opts.PopulateChroot {
		if opts.SandboxConfig.ChrootDir == "" {
			log.Error("--populate-chroot requires --chroot")
			os.Exit(1)
		}
		if err := fs.PopulateChroot(opts.SandboxConfig.ChrootDir, opts.Nameservers, opts.Hostname); err != nil {
			log.Error("failed to populate chroot", slog.Any("err", err))
			os.Exit(1)
		}
	}

	handle, err := client.Open(opts.EntryPoint, opts.Env, opts.Preloads)
	if err != nil {
		log.Error("failed to start spawner", slog.Any("err", err))
		os.Exit(1)
	}
	defer handle.Close()

	args := make([][]byte, len(opts.Args))
	for i, a := range opts.Args {
		args[i] = []byte(a)
	}

	proc, err := handle.Spawn(opts.ProcessName, opts.SandboxConfig, args)
	if err != nil {
		log.Error("spawn failed", slog.Any("err", err))
		os.Exit(1)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		io.Copy(os.Stdout, proc.Stdout)
	}()
	go func() {
		defer wg.Done()
		io.Copy(os.Stderr, proc.Stderr)
	}()
	go func() {
		io.Copy(proc.Stdin, os.Stdin)
		proc.Stdin.Close()
	}()

	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(proc.Pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			log.Error("wait failed", slog.Any("err", err))
			os.Exit(1)
		}
		if wpid == proc.Pid {
			break
		}
	}
	wg.Wait()

	os.Exit(ws.ExitStatus())
}
