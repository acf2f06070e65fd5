package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/xnet/internal/assert"
	"github.com/stealthrocket/xnet/internal/network"
	"github.com/stealthrocket/xnet/pkg/xnet"
)

var listenTests = tests{
	"show the listen command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "listen", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet listen ")
		assert.Equal(t, stderr, "")
	},

	"listen on a unix socket and serve one connection": func(t *testing.T) {
		path := filepath.Join(socketDir(t), "server.sock")
		wait := start(t, "", "listen", "-n", "1", "unix", path)

		s := dialRetry(t, &xnet.BuildParams{Network: "unix", RemoteAddress: path})
		sendMessage(t, s, "hello\n")
		sendMessage(t, s, "world\n")
		assert.OK(t, s.Close())

		stdout, stderr, exitCode := wait()
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "hello\nworld\n")
		assert.Equal(t, stderr, "")
	},

	"listen in line mode prefixes lines with the peer address": func(t *testing.T) {
		dir := socketDir(t)
		serverPath := filepath.Join(dir, "server.sock")
		clientPath := filepath.Join(dir, "client.sock")
		wait := start(t, "", "listen", "--max", "1", "--lines", "unix", serverPath)

		s := dialRetry(t, &xnet.BuildParams{
			Network:       "unix",
			LocalAddress:  clientPath,
			RemoteAddress: serverPath,
		})
		sendMessage(t, s, "hel")
		sendMessage(t, s, "lo\nwor")
		sendMessage(t, s, "ld")
		assert.OK(t, s.Close())

		stdout, _, exitCode := wait()
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, clientPath+": hello\n"+clientPath+": world\n")
	},

	"listen on a unix datagram socket until max datagrams were received": func(t *testing.T) {
		dir := socketDir(t)
		serverPath := filepath.Join(dir, "server.sock")
		clientPath := filepath.Join(dir, "client.sock")
		wait := start(t, "", "listen", "-n", "2", "--lines", "unixgram", serverPath)

		s := dialRetry(t, &xnet.BuildParams{
			Network:       "unixgram",
			LocalAddress:  clientPath,
			RemoteAddress: serverPath,
		})
		defer s.Close()
		sendMessage(t, s, "one")
		sendMessage(t, s, "two\n")

		stdout, _, exitCode := wait()
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, clientPath+": one\n"+clientPath+": two\n")
	},

	"datagrams larger than the buffer are truncated with a warning": func(t *testing.T) {
		dir := socketDir(t)
		serverPath := filepath.Join(dir, "server.sock")
		clientPath := filepath.Join(dir, "client.sock")
		wait := start(t, "", "listen", "--log-level", "warn", "-n", "1", "unixgram", serverPath)

		s := dialRetry(t, &xnet.BuildParams{
			Network:       "unixgram",
			LocalAddress:  clientPath,
			RemoteAddress: serverPath,
		})
		defer s.Close()
		sendMessage(t, s, strings.Repeat("x", 100000))

		stdout, stderr, exitCode := wait()
		assert.Equal(t, exitCode, 0)
		assert.Less(t, 0, len(stdout))
		assert.Less(t, len(stdout), 100000)
		assert.Equal(t, strings.Trim(stdout, "x"), "")
		assert.Contains(t, stderr, "datagram truncated")
	},

	"peers without an address are unnamed": func(t *testing.T) {
		assert.Equal(t, peerName(nil), "(unnamed)")
		assert.Equal(t, peerName(&network.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}, Port: 80}), "127.0.0.1:80")
	},

	"connections are served concurrently": func(t *testing.T) {
		path := filepath.Join(socketDir(t), "server.sock")
		wait := start(t, "", "listen", "-n", "2", "--rate", "1000/s", "unix", path)

		first := dialRetry(t, &xnet.BuildParams{Network: "unix", RemoteAddress: path})
		second := dialRetry(t, &xnet.BuildParams{Network: "unix", RemoteAddress: path})
		sendMessage(t, second, "second\n")
		assert.OK(t, second.Close())
		sendMessage(t, first, "first\n")
		assert.OK(t, first.Close())

		stdout, _, exitCode := wait()
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "first\n")
		assert.Contains(t, stdout, "second\n")
	},

	"listening on an address in use causes an error": func(t *testing.T) {
		path := filepath.Join(socketDir(t), "server.sock")
		l, err := xnet.Listen("unix", path)
		assert.OK(t, err)
		defer l.Close()

		_, stderr, exitCode := execute(t, "", "listen", "unix", path)
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: xnet listen: ")
	},

	"passing an invalid rate causes an error": func(t *testing.T) {
		_, _, exitCode := execute(t, "", "listen", "--rate", "fast", "tcp", ":0")
		assert.Equal(t, exitCode, 2)
	},
}
