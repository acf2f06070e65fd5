package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/containerd/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/stealthrocket/xnet/internal/buffer"
	"github.com/stealthrocket/xnet/internal/network"
	"github.com/stealthrocket/xnet/internal/print/human"
	"github.com/stealthrocket/xnet/pkg/xnet"
	"github.com/stealthrocket/xnet/pkg/zbytes"
)

const listenUsage = `
Usage:	xnet listen [options] <network> <address>

   Listens on the address and writes the data received to stdout.

   Connection oriented networks (tcp, unix, unixpacket) accept connections
   and serve them concurrently. Datagram networks (udp, unixgram) receive
   datagrams. The command runs until interrupted, or until it served the
   number of connections or datagrams set by --max.

Example:

   $ xnet listen --lines tcp :8080

   $ xnet listen -n 1 unixgram /tmp/server.sock

Options:
   -c, --config path   Path to the xnet configuration file (overrides XNETCONFIG)
   -h, --help          Show this usage information
       --lines         Write received data line by line, prefixed by the peer
   -n, --max count     Exit after this many connections or datagrams (0 is unlimited)
       --rate limit    Maximum rate of accepted connections (e.g. 100/s)
`

func listen(ctx context.Context, args []string) error {
	var (
		max   = -1
		limit = human.Rate(-1)
		lines = false
	)

	flagSet := newFlagSet("xnet listen", listenUsage)
	intVar(flagSet, &max, "n", "max")
	customVar(flagSet, &limit, "rate")
	boolVar(flagSet, &lines, "lines")

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
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if max < 0 {
		max = config.Listen.Max
	}
	if limit < 0 {
		limit, _ = config.Listen.Rate.Value()
	}
	var limiter *rate.Limiter
	if limit > 0 {
		limiter = rate.NewLimiter(rate.Limit(limit), 1)
	} else {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	l, err := xnet.ListenEx(ctx, &xnet.BuildParams{
		Network:      kind.Name,
		LocalAddress: args[1],
		PreCall:      preCall(xnet.ModeListen, config),
		PostCall: func(s xnet.Socket, p *xnet.BuildParams, local, _ *xnet.Endpoint) error {
			log.G(ctx).WithFields(log.Fields{
				"network": p.Network,
				"local":   local.String(),
			}).Info("listening")
			return nil
		},
	})
	if err != nil {
		return err
	}
	defer l.Close()

	srv := &server{
		pool:  config.BufferPool(),
		out:   &syncWriter{w: stdout},
		lines: lines,
	}
	if kind.IsConnectionOriented() {
		return srv.acceptLoop(ctx, l, limiter, max)
	}
	return srv.receiveLoop(ctx, l, max)
}

type server struct {
	pool  *buffer.Pool
	out   *syncWriter
	lines bool
}

// acceptLoop accepts connections on l and serves each of them in a goroutine
// until ctx is canceled or max connections were accepted.
func (srv *server) acceptLoop(ctx context.Context, l xnet.Socket, limiter *rate.Limiter, max int) error {
	group, ctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(ctx, func() { l.Shutdown(network.SHUTRDWR) })
	defer stop()

	for n := 0; max == 0 || n < max; n++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		conn, addr, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			_ = group.Wait()
			return err
		}
		peer := peerName(addr)

		group.Go(func() error {
			defer conn.Close()
			stop := context.AfterFunc(ctx, func() { conn.Shutdown(network.SHUTRDWR) })
			defer stop()

			logger := log.G(ctx).WithFields(log.Fields{
				"session": uuid.NewString(),
				"peer":    peer,
			})
			logger.Info("accepted connection")

			err := srv.serve(conn, peer)
			if err != nil && ctx.Err() == nil {
				if errors.As(err, new(outputError)) {
					return err
				}
				logger.WithError(err).Warn("connection failed")
			}
			logger.Debug("connection closed")
			return nil
		})
	}

	return group.Wait()
}

// serve writes the data received on conn to the output until the peer shuts
// down the connection.
func (srv *server) serve(conn xnet.Socket, peer string) error {
	buf := srv.pool.Get()
	defer buffer.Release(&buf, srv.pool)

	for {
		if buf.FreeSize() == 0 {
			buf.Move()
			if err := buf.Reserve(buf.Cap()); err != nil {
				return err
			}
		}
		n, err := buf.AppendSocket(conn.Fd())
		if err != nil {
			return err
		}
		eof := n == 0
		if err := srv.flush(buf, peer, eof); err != nil {
			return err
		}
		if eof {
			return nil
		}
	}
}

// receiveLoop writes the datagrams received on s to the output until ctx is
// canceled or max datagrams were received.
func (srv *server) receiveLoop(ctx context.Context, s xnet.Socket, max int) error {
	stop := context.AfterFunc(ctx, func() { s.Shutdown(network.SHUTRDWR) })
	defer stop()

	buf := srv.pool.Get()
	defer buffer.Release(&buf, srv.pool)

	r := &datagramReader{socket: s}
	for n := 0; max == 0 || n < max; n++ {
		size, err := buf.AppendFrom(r)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		peer := peerName(r.peer)
		logger := log.G(ctx).WithFields(log.Fields{
			"peer": peer,
			"size": size,
		})
		if r.truncated {
			logger.Warn("datagram truncated")
		} else {
			logger.Debug("received datagram")
		}

		if err := srv.flush(buf, peer, true); err != nil {
			return err
		}
		buf.Zero()
	}
	return nil
}

// flush writes the data of buf to the output. In line mode, only complete
// lines are written unless eof is true.
func (srv *server) flush(buf *zbytes.Bytes, peer string, eof bool) error {
	if !srv.lines {
		if buf.Empty() {
			return nil
		}
		err := srv.out.write(buf.Data())
		buf.Consume(buf.Available())
		return err
	}
	for {
		line, err := buf.Token(bufio.ScanLines, eof)
		if err != nil {
			return err
		}
		if line == nil {
			return nil
		}
		if err := srv.out.writeLine(peer, line); err != nil {
			return err
		}
	}
}

// datagramReader is an io.Reader receiving one datagram per call to Read, it
// remembers the address of the last sender and whether the datagram did not
// fit in b.
type datagramReader struct {
	socket    xnet.Socket
	peer      xnet.Sockaddr
	truncated bool
}

func (r *datagramReader) Read(b []byte) (int, error) {
	n, rflags, addr, err := r.socket.RecvFrom([][]byte{b}, 0)
	if err != nil {
		return 0, err
	}
	r.peer = addr
	r.truncated = rflags&network.TRUNC != 0
	return n, nil
}

// peerName returns the printable address of a peer. Sockets may receive no
// address for peers that are not bound, such as unnamed unix sockets.
func peerName(addr xnet.Sockaddr) string {
	if addr == nil {
		return "(unnamed)"
	}
	return xnet.FormatSockaddr(addr)
}

// outputError wraps errors of the output, which abort the command instead of
// only closing the connection that produced the data.
type outputError struct{ err error }

func (e outputError) Error() string { return e.err.Error() }

func (e outputError) Unwrap() error { return e.err }

// syncWriter serializes the writes of concurrent connections to the output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		return outputError{err}
	}
	return nil
}

func (s *syncWriter) writeLine(peer string, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "%s: %s\n", peer, line); err != nil {
		return outputError{err}
	}
	return nil
}
