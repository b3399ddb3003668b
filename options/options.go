//go:build linux

package options

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talonforge/spawnbox/logger"
	spawnnet "github.com/talonforge/spawnbox/net"
	"github.com/talonforge/spawnbox/protocol"
	"github.com/talonforge/spawnbox/sandbox"
	"github.com/talonforge/spawnbox/version"
	"github.com/goombaio/namegenerator"
	bytesize "github.com/inhies/go-bytesize"
	"github.com/urfave/cli/v3"
)

// ParsedOptions is everything the demo CLI needs to open a spawner handle
// and issue one spawn, assembled from the command line by
// buildOptionsFromCLI below.
type ParsedOptions struct {
	EntryPoint  string
	Preloads    []string
	Env         []string
	ProcessName string
	Args        []string

	SandboxConfig protocol.SandboxConfig
	Rlimits       sandbox.Rlimits

	// PopulateChroot asks the demo CLI to prepare ChrootDir itself (mount
	// proc/dev/tmp, write /etc) before spawning, rather than requiring the
	// caller to have done it already.
	PopulateChroot bool
	Nameservers    []string
	Hostname       string

	LogLevel  slog.Level
	LogFormat logger.LogFormat
}

func buildOptionsFromCLI(c *cli.Command) (*ParsedOptions, error) {
	o := &ParsedOptions{
		Preloads:    c.StringSlice("preload"),
		ProcessName: c.String("process-name"),
	}

	userEnv := map[string]string{}
	for _, e := range c.StringSlice("env") {
		k, v, err := ParseEnv(e)
		if err != nil {
			return nil, err
		}
		userEnv[k] = v
	}
	o.Env = MergeEnv(defaultEnvironment, userEnv)

	logLevel, err := parseLogLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}
	o.LogLevel = logLevel

	logFormat, err := parseLogFormat(c.String("log-format"))
	if err != nil {
		return nil, err
	}
	o.LogFormat = logFormat

	cfg := protocol.DefaultSandboxConfig()
	cfg.ChrootDir = c.String("chroot")
	cfg.DropCapabilities = !c.Bool("no-cap-drop")
	cfg.SkipSandboxSeccomp = c.Bool("skip-seccomp")
	cfg.EnableCoredumps = c.Bool("enable-coredumps")

	o.PopulateChroot = c.Bool("populate-chroot")
	o.Nameservers = c.StringSlice("nameserver")
	o.Hostname = c.String("hostname")

	if veth := c.String("net-kernel-veth"); veth != "" {
		cfg.Network = &protocol.NetworkConfig{
			KernelVethName:   veth,
			ChildVethName:    c.String("net-child-veth"),
			KernelIPv4:       c.String("net-kernel-ipv4"),
			ChildIPv4:        c.String("net-child-ipv4"),
			ChildIPv4Gateway: c.String("net-gateway"),
		}
		if err := spawnnet.ValidateConfig(cfg.Network); err != nil {
			return nil, err
		}
	}
	o.SandboxConfig = cfg

	limits := sandbox.DefaultRlimits()
	if s := c.String("rlimit-as"); s != "" {
		v, err := bytesize.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("bad --rlimit-as %q: %w", s, err)
		}
		limits.AS = uint64(v)
	}
	if s := c.String("rlimit-fsize"); s != "" {
		v, err := bytesize.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("bad --rlimit-fsize %q: %w", s, err)
		}
		limits.FSize = uint64(v)
	}
	o.Rlimits = limits

	return o, nil
}

// ParseCli builds the `spawnbox` demo command: parent-side CLI that opens a
// spawner, issues one spawn, relays stdio and exits with the child's status.
func ParseCli(ctx context.Context, args []string) (*ParsedOptions, error) {
	var result *ParsedOptions
	generator := namegenerator.NewNameGenerator(time.Now().UTC().UnixNano())

	cmd := &cli.Command{
		Name:    "spawnbox",
		Usage:   "Fast sandboxed process spawning for Linux.",
		Version: version.Version(),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "preload", Usage: "A module preload identifier run once before the control loop"},
			&cli.StringFlag{Name: "process-name", Value: generator.Generate(), Usage: "Title set on the spawned child"},
			&cli.StringSliceFlag{Name: "env", Usage: "Sets an environment variable as `KEY=VALUE` for the spawner"},
			&cli.StringFlag{Name: "chroot", Usage: "Absolute path to chroot the child into"},
			&cli.BoolFlag{Name: "populate-chroot", Value: false, Usage: "Prepare --chroot with proc/dev/tmp/etc before spawning"},
			&cli.StringSliceFlag{Name: "nameserver", Usage: "Nameserver written to the prepared chroot's resolv.conf"},
			&cli.StringFlag{Name: "hostname", Usage: "Hostname written to the prepared chroot's /etc/hostname"},
			&cli.BoolFlag{Name: "no-cap-drop", Value: false, Usage: "Do not drop capabilities in the child"},
			&cli.BoolFlag{Name: "skip-seccomp", Value: false, Usage: "Skip installing the seccomp filter"},
			&cli.BoolFlag{Name: "enable-coredumps", Value: false, Usage: "Allow core dumps from the child"},
			&cli.StringFlag{Name: "net-kernel-veth", Usage: "Host-side veth name; enables networking when set"},
			&cli.StringFlag{Name: "net-child-veth", Value: "eth0", Usage: "Child-side veth name"},
			&cli.StringFlag{Name: "net-kernel-ipv4", Usage: "Host-side veth IPv4 address (CIDR)"},
			&cli.StringFlag{Name: "net-child-ipv4", Usage: "Child-side veth IPv4 address (CIDR)"},
			&cli.StringFlag{Name: "net-gateway", Usage: "Default gateway address for the child"},
			&cli.StringFlag{Name: "rlimit-as", Usage: "RLIMIT_AS value (e.g. 512MB); parsed and checked only, the spawner applies its default"},
			&cli.StringFlag{Name: "rlimit-fsize", Usage: "RLIMIT_FSIZE value (e.g. 512MB); parsed and checked only, the spawner applies its default"},
			&cli.StringFlag{Name: "log-level", Value: "error", Usage: "Log verbosity (info|warn|error)"},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "Log format (text|json)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			opts, err := buildOptionsFromCLI(c)
			if err != nil {
				return err
			}

			argv := c.Args().Slice()
			if len(argv) == 0 {
				return errors.New("missing entry point; usage: spawnbox [options] -- entrypoint [args...]")
			}
			opts.EntryPoint = argv[0]
			opts.Args = argv[1:]
			result = opts
			return nil
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		_ = cli.ShowAppHelp(cmd)
		return nil, err
	}
	return result, nil
}
