package main

import (
	"context"

	"github.com/stealthrocket/xnet/internal/print/jsonprint"
	"github.com/stealthrocket/xnet/internal/print/textprint"
	"github.com/stealthrocket/xnet/internal/print/yamlprint"
	"github.com/stealthrocket/xnet/internal/stream"
	"github.com/stealthrocket/xnet/pkg/xnet"
)

const resolveUsage = `
Usage:	xnet resolve [options] <network> <address>

   Prints the candidate endpoints of an address, in the order that the dial
   and listen commands try them.

Example:

   $ xnet resolve tcp localhost:http
   FAMILY  TYPE    PROTOCOL  ADDRESS
   INET    STREAM  TCP       127.0.0.1:80
   INET6   STREAM  TCP       [::1]:80

Options:
   -c, --config path    Path to the xnet configuration file (overrides XNETCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
   -p, --passive        Resolve the address of a listening socket
`

type endpoint struct {
	Family   string `json:"family"   yaml:"family"   text:"FAMILY"`
	Type     string `json:"type"     yaml:"type"     text:"TYPE"`
	Protocol string `json:"protocol" yaml:"protocol" text:"PROTOCOL"`
	Address  string `json:"address"  yaml:"address"  text:"ADDRESS"`
}

func resolve(ctx context.Context, args []string) error {
	var (
		output  = outputFormat("text")
		passive = false
	)

	flagSet := newFlagSet("xnet resolve", resolveUsage)
	customVar(flagSet, &output, "o", "output")
	boolVar(flagSet, &passive, "p", "passive")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return usageError("Expected network and address as arguments")
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	if _, err := loadConfig(); err != nil {
		return err
	}

	endpoints, err := xnet.Resolve(ctx, kind.Name, args[1], passive)
	if err != nil {
		return err
	}

	var w stream.WriteCloser[endpoint]
	switch output {
	case "json":
		w = jsonprint.NewWriter[endpoint](stdout)
	case "yaml":
		w = yamlprint.NewWriter[endpoint](stdout)
	default:
		w = textprint.NewTableWriter[endpoint](stdout)
	}

	records := make([]endpoint, len(endpoints))
	for i := range endpoints {
		e := &endpoints[i]
		records[i] = endpoint{
			Family:   e.Family.String(),
			Type:     e.Socktype.String(),
			Protocol: e.Protocol.String(),
			Address:  e.String(),
		}
	}
	return stream.Copy(w, records...)
}
