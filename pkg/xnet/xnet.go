// Package xnet establishes sockets from a network name and a human-readable
// address.
//
// Networks are tcp, tcp4, tcp6, udp, udp4, udp6, unix, unixgram, and
// unixpacket. Addresses of IP networks are "host:port" or "[host]:port" where
// the host may be a name, a numeric address, or "*" (or empty) for the
// wildcard address; addresses of unix networks are socket paths.
//
// The functions of this package block until the socket is established: there
// is no timeout on resolution or connection.
package xnet

import (
	"context"
	"time"

	"github.com/stealthrocket/xnet/internal/network"
)

// Socket is the handle returned by the functions of this package. Ownership of
// the socket is transferred to the caller, who must close it.
type Socket = network.Socket

// Sockaddr is the address of a socket endpoint.
type Sockaddr = network.Sockaddr

var defaultBinder Binder

// Dial connects to the address on the named network.
func Dial(network, address string) (Socket, error) {
	switch {
	case network == "":
	case network[0] == 't':
		return DialTCP(network, address)
	case network[0] == 'u':
		if len(network) > 1 && network[1] == 'd' {
			return DialUDP(network, address)
		}
		return DialUnix(network, address)
	}
	return nil, errUnknownNetwork(network)
}

// DialTimeout is not implemented, it always returns ErrNotImplemented.
func DialTimeout(network, address string, timeout time.Duration) (Socket, error) {
	return nil, ErrNotImplemented
}

// Listen announces on the local address of the named network. Stream sockets
// are listening for connections, datagram sockets are bound.
func Listen(network, address string) (Socket, error) {
	switch {
	case network == "":
	case network[0] == 't':
		return ListenTCP(network, address)
	case network[0] == 'u':
		if len(network) > 1 && network[1] == 'd' {
			return ListenUDP(network, address)
		}
		return ListenUnix(network, address)
	}
	return nil, errUnknownNetwork(network)
}

// DialEx establishes a socket connected to p.RemoteAddress with the default
// binder.
func DialEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.Dial(ctx, p)
}

// ListenEx establishes a socket bound to p.LocalAddress with the default
// binder.
func ListenEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.Listen(ctx, p)
}

// Resolve returns the candidate endpoints of address with the default binder.
func Resolve(ctx context.Context, network, address string, passive bool) ([]Endpoint, error) {
	return defaultBinder.Resolve(ctx, network, address, passive)
}

func DialTCPEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.DialTCP(ctx, p)
}

func DialUDPEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.DialUDP(ctx, p)
}

func DialUnixEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.DialUnix(ctx, p)
}

func ListenTCPEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.ListenTCP(ctx, p)
}

func ListenUDPEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.ListenUDP(ctx, p)
}

func ListenUnixEx(ctx context.Context, p *BuildParams) (Socket, error) {
	return defaultBinder.ListenUnix(ctx, p)
}

func DialTCP(network, remoteAddress string) (Socket, error) {
	return DialTCPEx(context.Background(), &BuildParams{
		Network:       network,
		RemoteAddress: remoteAddress,
	})
}

// DialTCP2 connects to remoteAddress from a socket bound to localAddress.
func DialTCP2(network, localAddress, remoteAddress string) (Socket, error) {
	return DialTCPEx(context.Background(), &BuildParams{
		Network:       network,
		LocalAddress:  localAddress,
		RemoteAddress: remoteAddress,
	})
}

func DialUDP(network, remoteAddress string) (Socket, error) {
	return DialUDPEx(context.Background(), &BuildParams{
		Network:       network,
		RemoteAddress: remoteAddress,
	})
}

// DialUDP2 connects to remoteAddress from a socket bound to localAddress.
func DialUDP2(network, localAddress, remoteAddress string) (Socket, error) {
	return DialUDPEx(context.Background(), &BuildParams{
		Network:       network,
		LocalAddress:  localAddress,
		RemoteAddress: remoteAddress,
	})
}

func DialUnix(network, remoteAddress string) (Socket, error) {
	return DialUnixEx(context.Background(), &BuildParams{
		Network:       network,
		RemoteAddress: remoteAddress,
	})
}

// DialUnix2 connects to the unix socket at address, passing the path as both
// the local and remote address of the hooks.
func DialUnix2(network, address string) (Socket, error) {
	return DialUnixEx(context.Background(), &BuildParams{
		Network:       network,
		LocalAddress:  address,
		RemoteAddress: address,
	})
}

func ListenTCP(network, address string) (Socket, error) {
	return ListenTCPEx(context.Background(), &BuildParams{
		Network:      network,
		LocalAddress: address,
	})
}

func ListenUDP(network, address string) (Socket, error) {
	return ListenUDPEx(context.Background(), &BuildParams{
		Network:      network,
		LocalAddress: address,
	})
}

func ListenUnix(network, address string) (Socket, error) {
	return ListenUnixEx(context.Background(), &BuildParams{
		Network:      network,
		LocalAddress: address,
	})
}
