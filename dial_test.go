package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stealthrocket/xnet/internal/assert"
	"github.com/stealthrocket/xnet/internal/network"
	"github.com/stealthrocket/xnet/pkg/xnet"
)

var dialTests = tests{
	"show the dial command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := execute(t, "", "dial", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\txnet dial ")
		assert.Equal(t, stderr, "")
	},

	"dial a unix socket and exchange data until the peer closes": func(t *testing.T) {
		path := filepath.Join(socketDir(t), "server.sock")
		l, err := xnet.Listen("unix", path)
		assert.OK(t, err)
		defer l.Close()

		received := make(chan string, 1)
		go func() {
			conn, _, err := l.Accept()
			if err != nil {
				received <- err.Error()
				return
			}
			defer conn.Close()
			b, _ := io.ReadAll(socketReader{conn})
			conn.SendTo([][]byte{bytes.ToUpper(b)}, nil, 0)
			received <- string(b)
		}()

		stdout, stderr, exitCode := execute(t, "hello\nworld\n", "dial", "unix", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.Equal(t, <-received, "hello\nworld\n")
		assert.Equal(t, stdout, "HELLO\nWORLD\n")
	},

	"dial udp and exit after the first reply": func(t *testing.T) {
		l, err := xnet.Listen("udp4", "127.0.0.1:0")
		assert.OK(t, err)
		defer l.Close()

		go func() {
			buf := make([]byte, 64)
			n, _, addr, err := l.RecvFrom([][]byte{buf}, 0)
			if err != nil {
				return
			}
			l.SendTo([][]byte{bytes.ToUpper(buf[:n])}, addr, 0)
		}()

		stdout, _, exitCode := execute(t, "ping", "dial", "--once", "udp4", localName(t, l))
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "PING")
	},

	"dial from a local unix datagram socket": func(t *testing.T) {
		dir := socketDir(t)
		serverPath := filepath.Join(dir, "server.sock")
		clientPath := filepath.Join(dir, "client.sock")

		l, err := xnet.Listen("unixgram", serverPath)
		assert.OK(t, err)
		defer l.Close()

		peer := make(chan string, 1)
		go func() {
			buf := make([]byte, 64)
			n, _, addr, err := l.RecvFrom([][]byte{buf}, 0)
			if err != nil {
				peer <- err.Error()
				return
			}
			peer <- xnet.FormatSockaddr(addr)
			l.SendTo([][]byte{bytes.ToUpper(buf[:n])}, addr, 0)
		}()

		stdout, _, exitCode := execute(t, "ping", "dial", "-o", "-l", clientPath, "unixgram", serverPath)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, <-peer, clientPath)
		assert.Equal(t, stdout, "PING")
	},

	"connection errors are reported": func(t *testing.T) {
		s, err := network.Host().Socket(network.INET, network.STREAM, network.TCP)
		assert.OK(t, err)
		defer s.Close()
		assert.OK(t, s.Bind(&network.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}))

		stdout, stderr, exitCode := execute(t, "", "dial", "tcp4", localName(t, s))
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: xnet dial: ")
		assert.Contains(t, stderr, "connection refused")
	},

	"missing arguments cause a usage error": func(t *testing.T) {
		_, _, exitCode := execute(t, "", "dial", "tcp")
		assert.Equal(t, exitCode, 2)
	},
}

// socketReader adapts a socket to io.Reader, a zero-length read is the end of
// the stream.
type socketReader struct{ xnet.Socket }

func (r socketReader) Read(b []byte) (int, error) {
	n, _, _, err := r.RecvFrom([][]byte{b}, 0)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func localName(t *testing.T, s xnet.Socket) string {
	t.Helper()
	sa, err := s.Name()
	assert.OK(t, err)
	return xnet.FormatSockaddr(sa)
}
