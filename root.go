package main

// Notes on program structure
// --------------------------
//
// xnet uses subcommands to invoke specific functionalities of the program.
// Each subcommand is implemented by a function named after the command, in a
// file of the same name (e.g. the "dial" command is implemented by the dial
// function in dial.go).
//
// The usage message for each command is declared by a constant starting with
// the command name and followed by the suffix "Usage". For example, the usage
// message for the "dial" command is declared by the constant dialUsage.
//
// The usage message contains a "Usage:	xnet <command>" section presenting
// the structure of the command. Note the tabulation separating "Usage:" and
// "xnet".

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/containerd/log"
	"golang.org/x/exp/slices"

	"github.com/stealthrocket/xnet/internal/config"
	"github.com/stealthrocket/xnet/internal/print/human"
	"github.com/stealthrocket/xnet/pkg/xnet"
)

const rootUsage = `xnet - socket establishment toolkit

   xnet turns network names and address strings into connected or listening
   sockets, trying every candidate endpoint of the address in order until one
   succeeds.

Example:

   $ xnet listen tcp :8080 &
   $ echo hello | xnet dial tcp localhost:8080

   $ xnet resolve -o yaml udp6 "[::1]:domain"

For a list of commands available, run 'xnet help'.`

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	configPath human.Path
	logLevel   string
)

func init() {
	if v := os.Getenv(config.PathEnv); v != "" {
		configPath = human.Path(v)
	} else {
		configPath = config.DefaultPath
	}
}

// root is the xnet entrypoint.
func root(ctx context.Context, args ...string) int {
	flagSet := newFlagSet("xnet", helpUsage)
	if err := parse(flagSet, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "xnet: %s\n", err)
		return 2
	}

	if args = flagSet.Args(); len(args) == 0 {
		fmt.Fprintln(stdout, rootUsage)
		return 0
	}

	log.L.Logger.SetOutput(stderr)
	cmd, args := args[0], args[1:]

	var err error
	switch cmd {
	case "config":
		err = configCommand(ctx, args)
	case "dial":
		err = dial(ctx, args)
	case "help":
		err = help(ctx, args)
	case "listen":
		err = listen(ctx, args)
	case "resolve":
		err = resolve(ctx, args)
	case "version":
		err = version(ctx, args)
	default:
		err = unknown(ctx, cmd)
	}

	switch e := err.(type) {
	case nil:
		return 0
	case exitCode:
		return int(e)
	case usage:
		fmt.Fprintf(stderr, "%s\n", e)
		return 2
	default:
		fmt.Fprintf(stderr, "ERR: xnet %s: %s\n", cmd, err)
		return 1
	}
}

// exitCode is an error type returned from command functions to indicate the
// exit code that should be returned by the program.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit: %d", e)
}

// usage is an error type returned from command functions to indicate a usage
// error.
//
// Usage errors cause the program to exit with status code 2.
type usage string

func usageError(msg string, args ...any) error {
	return usage(fmt.Sprintf(msg, args...))
}

func (e usage) Error() string {
	return string(e)
}

func setEnum[T ~string](enum *T, typ string, value string, options ...string) error {
	for _, option := range options {
		if option == value {
			*enum = T(option)
			return nil
		}
	}
	return fmt.Errorf("unsupported %s: %q (not one of %s)", typ, value, strings.Join(options, ", "))
}

type outputFormat string

func (o outputFormat) String() string {
	return string(o)
}

func (o *outputFormat) Set(value string) error {
	return setEnum(o, "output format", value, "text", "json", "yaml")
}

type logLevelFlag struct{ level *string }

func (l logLevelFlag) String() string {
	if l.level == nil {
		return ""
	}
	return *l.level
}

func (l logLevelFlag) Set(value string) error {
	return setEnum(l.level, "log level", value, "trace", "debug", "info", "warn", "error")
}

func newFlagSet(cmd, usage string) *flag.FlagSet {
	usage = strings.TrimSpace(usage)
	flagSet := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() { fmt.Fprintln(stdout, usage) }
	customVar(flagSet, &configPath, "c", "config")
	customVar(flagSet, logLevelFlag{&logLevel}, "log-level")
	return flagSet
}

// parseFlags is a greedy parser which consumes all options known to f and
// returns the remaining arguments.
//
// The -h and --help options print the usage of the command and cause it to
// exit with status zero, unknown options are usage errors.
func parseFlags(f *flag.FlagSet, args []string) ([]string, error) {
	var unknownArgs []string
	for {
		if err := parse(f, args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, exitCode(0)
			}
			return nil, usageError("%s: %s", f.Name(), err)
		}
		if args = f.Args(); len(args) == 0 {
			return unknownArgs, nil
		}
		i := slices.IndexFunc(args, func(s string) bool {
			return strings.HasPrefix(s, "-")
		})
		if i < 0 {
			i = len(args)
		} else if args[i] == "-" {
			i++
		} else if args[i] == "--" {
			return append(unknownArgs, args[i+1:]...), nil
		}
		if i == 0 {
			return nil, usageError("%s: cannot parse %q", f.Name(), args[0])
		}
		unknownArgs = append(unknownArgs, args[:i]...)
		args = args[i:]
	}
}

// parse parses args with f, the usage message is printed to stdout only when
// f returns flag.ErrHelp.
func parse(f *flag.FlagSet, args []string) error {
	printUsage := f.Usage
	f.Usage = func() {}
	defer func() { f.Usage = printUsage }()

	err := f.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		printUsage()
	}
	return err
}

func boolVar(f *flag.FlagSet, dst *bool, name string, alias ...string) {
	f.BoolVar(dst, name, *dst, "")
	for _, name := range alias {
		f.BoolVar(dst, name, *dst, "")
	}
}

func intVar(f *flag.FlagSet, dst *int, name string, alias ...string) {
	f.IntVar(dst, name, *dst, "")
	for _, name := range alias {
		f.IntVar(dst, name, *dst, "")
	}
}

func stringVar(f *flag.FlagSet, dst *string, name string, alias ...string) {
	f.StringVar(dst, name, *dst, "")
	for _, name := range alias {
		f.StringVar(dst, name, *dst, "")
	}
}

func customVar(f *flag.FlagSet, dst flag.Value, name string, alias ...string) {
	f.Var(dst, name, "")
	for _, name := range alias {
		f.Var(dst, name, "")
	}
}

// loadConfig reads the configuration file and applies the log level, the
// --log-level option takes precedence over the configuration.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := c.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	if err := log.SetLevel(level); err != nil {
		return nil, err
	}
	return c, nil
}

// preCall returns the hook applying the default options of mode and the
// socket options of the configuration.
func preCall(mode byte, c *config.Config) func(xnet.Socket, *xnet.BuildParams) error {
	sockopt := xnet.SockoptHook(c.SocketOptions())
	return func(s xnet.Socket, p *xnet.BuildParams) error {
		if err := xnet.SetDefaultSockopt(p.Network, s, mode); err != nil {
			return err
		}
		return sockopt(s, p)
	}
}

func parseKind(name string) (xnet.Kind, error) {
	k, err := xnet.ParseKind(name)
	if err != nil {
		return k, usageError("unknown network: %q (not one of tcp, tcp4, tcp6, udp, udp4, udp6, unix, unixgram, unixpacket)", name)
	}
	return k, nil
}
