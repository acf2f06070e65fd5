package main

import (
	"context"
	"fmt"
	"strings"
)

const helpUsage = `
Usage:	xnet <command> [options]

Socket Commands:
   dial     Connect to an address and exchange data with stdin and stdout
   listen   Accept connections or receive datagrams on an address
   resolve  Print the candidate endpoints of an address

Other Commands:
   config   View or edit the xnet configuration
   help     Show usage information about xnet commands
   version  Show the xnet version information

Global Options:
   -c, --config path    Path to the xnet configuration file (overrides XNETCONFIG)
   -h, --help           Show usage information
       --log-level lvl  Log level, one of: trace, debug, info, warn, error

Networks:
   tcp, tcp4, tcp6, udp, udp4, udp6, unix, unixgram, unixpacket

Addresses:
   host:port, [ipv6]:port, *:port (wildcard), or the path of unix sockets
`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("xnet help", helpUsage)
	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}

	var msg string
	if len(args) == 0 {
		msg = helpUsage
	} else {
		switch cmd := args[0]; cmd {
		case "config":
			msg = configUsage
		case "dial":
			msg = dialUsage
		case "help":
			msg = helpUsage
		case "listen":
			msg = listenUsage
		case "resolve":
			msg = resolveUsage
		case "version":
			msg = versionUsage
		default:
			fmt.Fprintf(stderr, "xnet help %s: unknown command\n", cmd)
			return exitCode(2)
		}
	}

	fmt.Fprintln(stdout, strings.TrimSpace(msg))
	return nil
}
