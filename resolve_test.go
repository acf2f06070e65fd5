package main

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stealthrocket/xnet/internal/assert"
)

var resolveTests = tests{
	"show the resolve command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "resolve", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet resolve ")
		assert.Equal(t, stderr, "")
	},

	"the text output is a table of endpoints": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "resolve", "tcp4", "127.0.0.1:80")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, ""+
			"FAMILY  TYPE    PROTOCOL  ADDRESS\n"+
			"INET    STREAM  TCP       127.0.0.1:80\n")
		assert.Equal(t, stderr, "")
	},

	"the wildcard resolves to the loopback addresses": func(t *testing.T) {
		stdout, _, exitCode := execute(t, "", "resolve", "-o", "json", "udp", "*:53")
		assert.Equal(t, exitCode, 0)

		endpoints := decodeEndpoints(t, stdout)
		assert.Equal(t, len(endpoints), 2)
		assert.Equal(t, endpoints[0], endpoint{"INET", "DGRAM", "UDP", "127.0.0.1:53"})
		assert.Equal(t, endpoints[1], endpoint{"INET6", "DGRAM", "UDP", "[::1]:53"})
	},

	"passive resolution of the wildcard gives the unspecified addresses": func(t *testing.T) {
		stdout, _, exitCode := execute(t, "", "resolve", "--passive", "-o", "json", "tcp", "*:8080")
		assert.Equal(t, exitCode, 0)

		endpoints := decodeEndpoints(t, stdout)
		assert.Equal(t, len(endpoints), 2)
		assert.Equal(t, endpoints[0].Address, "0.0.0.0:8080")
		assert.Equal(t, endpoints[1].Address, "[::]:8080")
	},

	"ipv4 addresses are mapped on ipv6 networks": func(t *testing.T) {
		stdout, _, exitCode := execute(t, "", "resolve", "-o", "json", "tcp6", "10.0.0.1:443")
		assert.Equal(t, exitCode, 0)

		endpoints := decodeEndpoints(t, stdout)
		assert.Equal(t, len(endpoints), 1)
		assert.Equal(t, endpoints[0], endpoint{"INET6", "STREAM", "TCP", "[::ffff:10.0.0.1]:443"})
	},

	"unix socket paths are printed as is": func(t *testing.T) {
		stdout, _, exitCode := execute(t, "", "resolve", "-o", "yaml", "unixgram", "/tmp/xnet.sock")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, ""+
			"family: UNIX\n"+
			"type: DGRAM\n"+
			"protocol: UNSPEC\n"+
			"address: /tmp/xnet.sock\n")
	},

	"malformed addresses cause an error": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "resolve", "tcp", "[]:80")
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: xnet resolve: ")
	},

	"unknown networks cause a usage error": func(t *testing.T) {
		_, stderr, exitCode := execute(t, "", "resolve", "ip", "127.0.0.1:80")
		assert.Equal(t, exitCode, 2)
		assert.HasPrefix(t, stderr, "unknown network: \"ip\"")
	},

	"missing arguments cause a usage error": func(t *testing.T) {
		_, _, exitCode := execute(t, "", "resolve", "tcp")
		assert.Equal(t, exitCode, 2)
	},
}

func decodeEndpoints(t *testing.T, s string) (endpoints []endpoint) {
	t.Helper()
	d := json.NewDecoder(strings.NewReader(s))
	for {
		var e endpoint
		if err := d.Decode(&e); err != nil {
			if err != io.EOF {
				t.Fatal(err)
			}
			return endpoints
		}
		endpoints = append(endpoints, e)
	}
}
