package xnet

import (
	"net"
	"net/netip"
	"strconv"

	"github.com/stealthrocket/xnet/internal/network"
)

// Endpoint is a candidate produced by address resolution: the arguments to
// create a socket and the address to bind or connect it to.
type Endpoint struct {
	Family   network.Family
	Socktype network.Socktype
	Protocol network.Protocol
	Addr     Sockaddr
}

func (e *Endpoint) String() string {
	if e == nil {
		return "(none)"
	}
	return FormatSockaddr(e.Addr)
}

// FormatSockaddr renders a socket address with numeric hosts and ports:
// "a.b.c.d:port" for IPv4, "[host]:port" for IPv6, and the path of unix
// socket addresses. The result is meant for diagnostics.
func FormatSockaddr(sa Sockaddr) string {
	switch a := sa.(type) {
	case *network.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)).String()
	case *network.SockaddrInet6:
		addr := netip.AddrFrom16(a.Addr)
		if a.ZoneId != 0 {
			addr = addr.WithZone(zoneName(a.ZoneId))
		}
		return netip.AddrPortFrom(addr, uint16(a.Port)).String()
	case *network.SockaddrUnix:
		return a.Name
	default:
		return "?host?:?port?"
	}
}

func zoneName(index uint32) string {
	if iface, err := net.InterfaceByIndex(int(index)); err == nil {
		return iface.Name
	}
	return strconv.FormatUint(uint64(index), 10)
}

func zoneIndex(zone string) (uint32, error) {
	if zone == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n), nil
	}
	iface, err := net.InterfaceByName(zone)
	if err != nil {
		return 0, err
	}
	return uint32(iface.Index), nil
}
