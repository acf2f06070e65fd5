package xnet

import (
	"context"
	"fmt"

	"github.com/stealthrocket/xnet/internal/network"
)

func unixEndpoint(kind Kind, path string) (*Endpoint, error) {
	if path == "" {
		return nil, fmt.Errorf("%s: %w", kind, ErrMissingAddress)
	}
	if len(path) >= network.MaxPathLen {
		return nil, fmt.Errorf("path=%q: %d bytes (limit is %d): %w", path, len(path), network.MaxPathLen-1, ErrPathTooLong)
	}
	return &Endpoint{
		Family:   network.UNIX,
		Socktype: kind.Socktype,
		Protocol: network.UNSPEC,
		Addr:     &network.SockaddrUnix{Name: path},
	}, nil
}

// dialUnix connects to the socket at p.RemoteAddress. When p.LocalAddress is
// set to a different path the socket is first bound to it, which gives
// datagram peers an address to reply to.
func (b *Binder) dialUnix(ctx context.Context, kind Kind, p *BuildParams) (Socket, error) {
	path := p.RemoteAddress
	if path == "" {
		path = p.LocalAddress
	}
	remote, err := unixEndpoint(kind, path)
	if err != nil {
		return nil, err
	}

	var local *Endpoint
	if p.LocalAddress != "" && p.LocalAddress != path {
		if local, err = unixEndpoint(kind, p.LocalAddress); err != nil {
			return nil, err
		}
	}

	s, err := b.establish(ctx, p, remote, local, remote, func(s Socket) error {
		if local != nil {
			if err := s.Bind(local.Addr); err != nil {
				return err
			}
		}
		return s.Connect(remote.Addr)
	})
	if err != nil {
		return nil, errNoEndpoint("dial", p.Network, path, err)
	}
	return s, nil
}

// listenUnix binds a socket to the path of p.LocalAddress, and listens for
// connections unless the network is unixgram.
func (b *Binder) listenUnix(ctx context.Context, kind Kind, p *BuildParams) (Socket, error) {
	path := p.LocalAddress
	if path == "" {
		path = p.RemoteAddress
	} else if p.RemoteAddress != "" && p.RemoteAddress != path {
		return nil, fmt.Errorf("listen %s %q != %q: %w", p.Network, p.LocalAddress, p.RemoteAddress, ErrAddressMismatch)
	}
	local, err := unixEndpoint(kind, path)
	if err != nil {
		return nil, err
	}

	s, err := b.establish(ctx, p, local, local, nil, func(s Socket) error {
		if err := s.Bind(local.Addr); err != nil {
			return err
		}
		if kind.IsConnectionOriented() {
			return s.Listen(Backlog)
		}
		return nil
	})
	if err != nil {
		return nil, errNoEndpoint("listen", p.Network, path, err)
	}
	return s, nil
}
