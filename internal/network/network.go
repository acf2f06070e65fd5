// Package network is a thin layer over the socket system calls of the host.
//
// Sockets created by this package are blocking and close-on-exec. All system
// calls are retried when interrupted by a signal (EINTR).
package network

import (
	"net/netip"
)

type Socket interface {
	Family() Family

	Type() Socktype

	Fd() int

	Close() error

	Bind(addr Sockaddr) error

	Listen(backlog int) error

	Connect(addr Sockaddr) error

	Accept() (Socket, Sockaddr, error)

	Name() (Sockaddr, error)

	Peer() (Sockaddr, error)

	RecvFrom(iovs [][]byte, flags int) (n, rflags int, addr Sockaddr, err error)

	SendTo(iovs [][]byte, addr Sockaddr, flags int) (int, error)

	Shutdown(how int) error

	SetOptInt(level, name, value int) error

	GetOptInt(level, name int) (int, error)

	SetNonblock(nonblock bool) error
}

// Namespace is the factory of sockets. The host namespace creates sockets
// with the operating system, other implementations may be used to intercept
// socket creation (e.g. in tests).
type Namespace interface {
	Socket(family Family, socktype Socktype, protocol Protocol) (Socket, error)
}

// Host returns the namespace of the host.
func Host() Namespace { return hostNamespace{} }

type hostNamespace struct{}

type Socktype uint8

func (t Socktype) String() string {
	switch t {
	case STREAM:
		return "STREAM"
	case DGRAM:
		return "DGRAM"
	case SEQPACKET:
		return "SEQPACKET"
	default:
		return "UNKNOWN"
	}
}

type Family uint8

func (f Family) String() string {
	switch f {
	case UNIX:
		return "UNIX"
	case INET:
		return "INET"
	case INET6:
		return "INET6"
	default:
		return "UNSPEC"
	}
}

type Protocol uint16

const (
	UNSPEC Protocol = 0
	TCP    Protocol = 6
	UDP    Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	default:
		return "UNSPEC"
	}
}

func SockaddrFamily(sa Sockaddr) Family {
	switch sa.(type) {
	case *SockaddrInet4:
		return INET
	case *SockaddrInet6:
		return INET6
	case *SockaddrUnix:
		return UNIX
	default:
		return UNSPECIFIED
	}
}

func SockaddrAddrPort(sa Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port))
	case *SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port))
	default:
		return netip.AddrPort{}
	}
}

// SockaddrFromAddrPort builds the socket address of addrPort. IPv4 addresses
// produce a *SockaddrInet4, everything else a *SockaddrInet6 with the given
// scope id.
func SockaddrFromAddrPort(addrPort netip.AddrPort, scopeID uint32) Sockaddr {
	addr := addrPort.Addr()
	if addr.Is4() {
		return &SockaddrInet4{Addr: addr.As4(), Port: int(addrPort.Port())}
	}
	return &SockaddrInet6{Addr: addr.As16(), Port: int(addrPort.Port()), ZoneId: scopeID}
}
