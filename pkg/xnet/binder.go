package xnet

import (
	"context"
	"fmt"

	"github.com/containerd/log"

	"github.com/stealthrocket/xnet/internal/network"
)

// Backlog is the length of the queue of pending connections of listening
// sockets.
const Backlog = 128

// BuildParams describe the socket to establish.
type BuildParams struct {
	// Network is one of tcp, tcp4, tcp6, udp, udp4, udp6, unix, unixgram, or
	// unixpacket.
	Network string

	// Address to bind the socket to. Required to listen, optional to dial.
	LocalAddress string

	// Address to connect the socket to. Required to dial.
	RemoteAddress string

	// PreCall is invoked after the socket was created and before any call to
	// bind, connect, or listen, typically to set socket options.
	PreCall func(s Socket, p *BuildParams) error

	// PostCall is invoked after the socket was established. The local and
	// remote endpoints are nil when the operation did not use them.
	//
	// Returning an error rejects the endpoint and closes the socket, even
	// though the connection or bind already happened.
	PostCall func(s Socket, p *BuildParams, local, remote *Endpoint) error

	// Arg is an opaque value available to the hooks.
	Arg any
}

// Binder establishes sockets by iterating over the candidate endpoints of
// addresses until one succeeds.
//
// The zero value is a valid binder which creates sockets on the host and
// resolves addresses with the system resolver.
type Binder struct {
	Namespace network.Namespace
	Resolver  Resolver
}

func (b *Binder) namespace() network.Namespace {
	if b.Namespace != nil {
		return b.Namespace
	}
	return network.Host()
}

func (b *Binder) resolver() Resolver {
	if b.Resolver != nil {
		return b.Resolver
	}
	return &SystemResolver{}
}

// Dial establishes a socket connected to p.RemoteAddress, bound to
// p.LocalAddress if it is set.
func (b *Binder) Dial(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := ParseKind(p.Network)
	if err != nil {
		return nil, err
	}
	if kind.IsUnix() {
		return b.dialUnix(ctx, kind, p)
	}
	return b.dialIP(ctx, kind, p)
}

// Listen establishes a socket bound to p.LocalAddress, listening for
// connections when the network is connection oriented.
func (b *Binder) Listen(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := ParseKind(p.Network)
	if err != nil {
		return nil, err
	}
	if kind.IsUnix() {
		return b.listenUnix(ctx, kind, p)
	}
	return b.listenIP(ctx, kind, p)
}

func (b *Binder) DialTCP(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := parseKindFunc(p.Network, Kind.IsTCP)
	if err != nil {
		return nil, err
	}
	return b.dialIP(ctx, kind, p)
}

func (b *Binder) DialUDP(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := parseKindFunc(p.Network, Kind.IsUDP)
	if err != nil {
		return nil, err
	}
	return b.dialIP(ctx, kind, p)
}

func (b *Binder) DialUnix(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := parseKindFunc(p.Network, Kind.IsUnix)
	if err != nil {
		return nil, err
	}
	return b.dialUnix(ctx, kind, p)
}

func (b *Binder) ListenTCP(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := parseKindFunc(p.Network, Kind.IsTCP)
	if err != nil {
		return nil, err
	}
	return b.listenIP(ctx, kind, p)
}

func (b *Binder) ListenUDP(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := parseKindFunc(p.Network, Kind.IsUDP)
	if err != nil {
		return nil, err
	}
	return b.listenIP(ctx, kind, p)
}

func (b *Binder) ListenUnix(ctx context.Context, p *BuildParams) (Socket, error) {
	kind, err := parseKindFunc(p.Network, Kind.IsUnix)
	if err != nil {
		return nil, err
	}
	return b.listenUnix(ctx, kind, p)
}

// Resolve returns the candidate endpoints of address on the named network,
// in the order the binder tries them. Passive resolution gives the endpoints
// of listening sockets. Unix networks have a single candidate, the path.
func (b *Binder) Resolve(ctx context.Context, network, address string, passive bool) ([]Endpoint, error) {
	kind, err := ParseKind(network)
	if err != nil {
		return nil, err
	}
	if kind.IsUnix() {
		endpoint, err := unixEndpoint(kind, address)
		if err != nil {
			return nil, err
		}
		return []Endpoint{*endpoint}, nil
	}
	return b.resolve(ctx, address, kind, passive)
}

func parseKindFunc(name string, match func(Kind) bool) (Kind, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return kind, err
	}
	if !match(kind) {
		return kind, errUnknownNetwork(name)
	}
	return kind, nil
}

func (b *Binder) resolve(ctx context.Context, address string, kind Kind, passive bool) ([]Endpoint, error) {
	endpoints, err := b.resolver().Resolve(ctx, address, kind.hints(passive))
	if err != nil {
		return nil, err
	}
	log.G(ctx).WithFields(log.Fields{
		"network":   kind.Name,
		"address":   address,
		"endpoints": len(endpoints),
	}).Debug("resolved address")
	return endpoints, nil
}

func (b *Binder) dialIP(ctx context.Context, kind Kind, p *BuildParams) (Socket, error) {
	if p.RemoteAddress == "" {
		return nil, fmt.Errorf("dial %s: remote address: %w", p.Network, ErrMissingAddress)
	}
	remotes, err := b.resolve(ctx, p.RemoteAddress, kind, false)
	if err != nil {
		return nil, err
	}
	if p.LocalAddress == "" {
		return b.connect(ctx, p, remotes)
	}
	locals, err := b.resolve(ctx, p.LocalAddress, kind, true)
	if err != nil {
		return nil, err
	}
	return b.bindConnect(ctx, p, locals, remotes)
}

func (b *Binder) connect(ctx context.Context, p *BuildParams, remotes []Endpoint) (Socket, error) {
	var lastErr error
	for i := range remotes {
		remote := &remotes[i]
		s, err := b.establish(ctx, p, remote, nil, remote, func(s Socket) error {
			return s.Connect(remote.Addr)
		})
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return nil, errNoEndpoint("dial", p.Network, p.RemoteAddress, lastErr)
}

// bindConnect tries every pair of local and remote endpoints of the same
// family, in the order of the remote endpoints first.
func (b *Binder) bindConnect(ctx context.Context, p *BuildParams, locals, remotes []Endpoint) (Socket, error) {
	var lastErr error
	for i := range remotes {
		remote := &remotes[i]

		for j := range locals {
			local := &locals[j]
			if local.Family != remote.Family {
				continue
			}
			s, err := b.establish(ctx, p, remote, local, remote, func(s Socket) error {
				if err := s.Bind(local.Addr); err != nil {
					return err
				}
				return s.Connect(remote.Addr)
			})
			if err == nil {
				return s, nil
			}
			lastErr = err
		}
	}
	return nil, errNoEndpoint("dial", p.Network, p.LocalAddress+"->"+p.RemoteAddress, lastErr)
}

func (b *Binder) listenIP(ctx context.Context, kind Kind, p *BuildParams) (Socket, error) {
	if p.LocalAddress == "" {
		return nil, fmt.Errorf("listen %s: local address: %w", p.Network, ErrMissingAddress)
	}
	locals, err := b.resolve(ctx, p.LocalAddress, kind, true)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := range locals {
		local := &locals[i]
		s, err := b.establish(ctx, p, local, local, nil, func(s Socket) error {
			if err := s.Bind(local.Addr); err != nil {
				return err
			}
			if kind.IsConnectionOriented() {
				return s.Listen(Backlog)
			}
			return nil
		})
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return nil, errNoEndpoint("listen", p.Network, p.LocalAddress, lastErr)
}

// establish runs one attempt: it creates a socket for the endpoint, runs the
// hooks around the setup function, and closes the socket if any of the steps
// failed.
func (b *Binder) establish(ctx context.Context, p *BuildParams, endpoint, local, remote *Endpoint, setup func(Socket) error) (_ Socket, err error) {
	logger := log.G(ctx).WithFields(log.Fields{
		"network": p.Network,
		"local":   local.String(),
		"remote":  remote.String(),
	})

	s, err := b.namespace().Socket(endpoint.Family, endpoint.Socktype, endpoint.Protocol)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrSocket, endpoint.Family, err)
		logger.WithError(err).Debug("endpoint rejected")
		return nil, err
	}
	defer func() {
		if err != nil {
			s.Close()
			logger.WithError(err).Debug("endpoint rejected")
		}
	}()

	if p.PreCall != nil {
		if err := p.PreCall(s, p); err != nil {
			return nil, errHookRejected("pre-call", err)
		}
	}
	if err := setup(s); err != nil {
		return nil, err
	}
	if p.PostCall != nil {
		if err := p.PostCall(s, p, local, remote); err != nil {
			return nil, errHookRejected("post-call", err)
		}
	}

	logger.WithField("fd", s.Fd()).Debug("endpoint established")
	return s, nil
}
