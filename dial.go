package main

import (
	"context"
	"errors"
	"io"

	"github.com/containerd/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stealthrocket/xnet/internal/buffer"
	"github.com/stealthrocket/xnet/internal/network"
	"github.com/stealthrocket/xnet/pkg/xnet"
	"github.com/stealthrocket/xnet/pkg/zbytes"
)

const dialUsage = `
Usage:	xnet dial [options] <network> <address>

   Connects a socket to the address, then sends the data read from stdin to
   the socket and writes the data received from the socket to stdout.

   The command exits when the peer shuts down the connection, or after the
   first message received when --once is set.

Example:

   $ echo hello | xnet dial tcp localhost:8080

   $ xnet dial -l /tmp/client.sock unixgram /tmp/server.sock

Options:
   -c, --config path   Path to the xnet configuration file (overrides XNETCONFIG)
   -h, --help          Show this usage information
   -l, --local addr    Bind the socket to this local address before connecting
   -o, --once          Exit after receiving the first message
`

func dial(ctx context.Context, args []string) error {
	var (
		localAddress string
		once         bool
	)

	flagSet := newFlagSet("xnet dial", dialUsage)
	stringVar(flagSet, &localAddress, "l", "local")
	boolVar(flagSet, &once, "o", "once")

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

	ctx = log.WithLogger(ctx, log.G(ctx).WithField("session", uuid.NewString()))

	s, err := xnet.DialEx(ctx, &xnet.BuildParams{
		Network:       kind.Name,
		LocalAddress:  localAddress,
		RemoteAddress: args[1],
		PreCall:       preCall(xnet.ModeDial, config),
		PostCall: func(s xnet.Socket, p *xnet.BuildParams, local, remote *xnet.Endpoint) error {
			log.G(ctx).WithFields(log.Fields{
				"network": p.Network,
				"local":   local.String(),
				"remote":  remote.String(),
			}).Info("connected")
			return nil
		},
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(ctx, func() { s.Shutdown(network.SHUTRDWR) })
	defer stop()

	pool := config.BufferPool()
	input := make(chan chunk)
	go readChunks(ctx, stdin, pool, input)

	group.Go(func() error {
		defer cancel()
		return receive(ctx, s, kind, pool, stdout, once)
	})
	group.Go(func() error {
		return send(ctx, s, kind, pool, input)
	})
	return group.Wait()
}

// chunk is a buffer of data read from the input, err is set on the last chunk
// and is io.EOF at the end of the input.
type chunk struct {
	buf *zbytes.Bytes
	err error
}

// readChunks reads r into buffers of the pool until the end of the input.
//
// The reads cannot be interrupted, the goroutine stays blocked on r after ctx
// was canceled until the read returns.
func readChunks(ctx context.Context, r io.Reader, pool *buffer.Pool, chunks chan<- chunk) {
	for {
		buf := pool.Get()
		_, err := buf.AppendFrom(r)
		select {
		case chunks <- chunk{buf, err}:
		case <-ctx.Done():
			pool.Put(buf)
			return
		}
		if err != nil {
			return
		}
	}
}

// send writes the input chunks to the socket. Each chunk is sent as a single
// message on datagram sockets. The write side of connection oriented sockets
// is shut down at the end of the input.
func send(ctx context.Context, s xnet.Socket, kind xnet.Kind, pool *buffer.Pool, chunks <-chan chunk) error {
	for {
		var c chunk
		select {
		case c = <-chunks:
		case <-ctx.Done():
			return nil
		}

		for !c.buf.Empty() {
			n, err := s.SendTo([][]byte{c.buf.Data()}, nil, 0)
			if err != nil {
				pool.Put(c.buf)
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			c.buf.Consume(n)
		}
		pool.Put(c.buf)

		switch {
		case c.err == nil:
		case errors.Is(c.err, io.EOF):
			if kind.IsConnectionOriented() {
				if err := s.Shutdown(network.SHUTWR); err != nil && ctx.Err() == nil {
					return err
				}
			}
			return nil
		default:
			return c.err
		}
	}
}

// receive writes the data received from the socket to w until the peer shuts
// down the connection or ctx is canceled.
func receive(ctx context.Context, s xnet.Socket, kind xnet.Kind, pool *buffer.Pool, w io.Writer, once bool) error {
	buf := pool.Get()
	defer buffer.Release(&buf, pool)

	for {
		n, err := buf.AppendSocket(s.Fd())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if n == 0 && (kind.IsConnectionOriented() || ctx.Err() != nil) {
			return nil
		}
		if _, err := w.Write(buf.Data()); err != nil {
			return err
		}
		buf.Consume(buf.Available())
		if once {
			return nil
		}
	}
}
