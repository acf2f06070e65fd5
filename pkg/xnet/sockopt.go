package xnet

import (
	"fmt"

	"github.com/stealthrocket/xnet/internal/network"
)

// Modes of SetDefaultSockopt.
const (
	ModeDial   = 'D'
	ModeListen = 'L'
)

// SocketOptions is a set of options applied to sockets before they are bound
// or connected. Zero values leave the defaults of the operating system.
type SocketOptions struct {
	ReuseAddr  bool
	ReusePort  bool
	Broadcast  bool
	NoDelay    bool
	KeepAlive  bool
	RecvBuffer int
	SendBuffer int
}

// Apply sets the options on s. Options which do not apply to the type of the
// socket (e.g. NoDelay on a datagram socket) are ignored.
func (opts *SocketOptions) Apply(s Socket) error {
	inet := s.Family() == network.INET || s.Family() == network.INET6
	stream := s.Type() == network.STREAM

	set := []struct {
		enabled bool
		name    string
		level   int
		option  int
		value   int
	}{
		{opts.ReuseAddr, "SO_REUSEADDR", network.SOL_SOCKET, network.SO_REUSEADDR, 1},
		{opts.ReusePort && inet, "SO_REUSEPORT", network.SOL_SOCKET, network.SO_REUSEPORT, 1},
		{opts.Broadcast && inet && !stream, "SO_BROADCAST", network.SOL_SOCKET, network.SO_BROADCAST, 1},
		{opts.NoDelay && inet && stream, "TCP_NODELAY", network.IPPROTO_TCP, network.TCP_NODELAY, 1},
		{opts.KeepAlive && stream, "SO_KEEPALIVE", network.SOL_SOCKET, network.SO_KEEPALIVE, 1},
		{opts.RecvBuffer > 0, "SO_RCVBUF", network.SOL_SOCKET, network.SO_RCVBUF, opts.RecvBuffer},
		{opts.SendBuffer > 0, "SO_SNDBUF", network.SOL_SOCKET, network.SO_SNDBUF, opts.SendBuffer},
	}

	for _, opt := range set {
		if !opt.enabled {
			continue
		}
		if err := s.SetOptInt(opt.level, opt.option, opt.value); err != nil {
			return fmt.Errorf("setsockopt %s=%d: %w", opt.name, opt.value, err)
		}
	}
	return nil
}

// SockoptHook returns a PreCall hook applying opts to the sockets.
func SockoptHook(opts SocketOptions) func(Socket, *BuildParams) error {
	return func(s Socket, _ *BuildParams) error { return opts.Apply(s) }
}

// SetDefaultSockopt applies the default options of sockets of the named
// network, mode is ModeDial or ModeListen.
//
// Listening stream sockets of IP networks reuse local addresses so a server
// can restart while connections of its previous instance are in TIME_WAIT.
// Dialed TCP sockets disable Nagle's algorithm.
func SetDefaultSockopt(networkName string, s Socket, mode byte) error {
	kind, err := ParseKind(networkName)
	if err != nil {
		return err
	}
	var opts SocketOptions
	switch mode {
	case ModeDial:
		opts.NoDelay = kind.IsTCP()
	case ModeListen:
		opts.ReuseAddr = !kind.IsUnix() && kind.IsConnectionOriented()
	default:
		return fmt.Errorf("socket option mode %q: %w", mode, network.EINVAL)
	}
	return opts.Apply(s)
}

// SetBlock puts s in blocking or non-blocking mode. The sockets of this
// package are blocking when created.
func SetBlock(s Socket, block bool) error {
	return s.SetNonblock(!block)
}
