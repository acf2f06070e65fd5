package xnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/stealthrocket/xnet/internal/network"
)

// Hints constrain the endpoints returned by a Resolver.
type Hints struct {
	// Family is UNSPECIFIED to accept both IPv4 and IPv6 endpoints.
	Family   network.Family
	Socktype network.Socktype
	Protocol network.Protocol
	// Passive is set when resolving an address to bind a listening socket,
	// the wildcard host then resolves to the unspecified addresses instead of
	// the loopback addresses.
	Passive bool
}

// Resolver is an interface used to expand an address string into the ordered
// list of candidate endpoints.
//
// Implementations never return a partial list: either the list of endpoints
// is returned, or an error.
type Resolver interface {
	Resolve(ctx context.Context, address string, hints Hints) ([]Endpoint, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, address string, hints Hints) ([]Endpoint, error)

func (f ResolverFunc) Resolve(ctx context.Context, address string, hints Hints) ([]Endpoint, error) {
	return f(ctx, address, hints)
}

// LookupResolver is the interface of the name service used by SystemResolver.
//
// *net.Resolver is a valid implementation of this interface.
type LookupResolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupPort(ctx context.Context, network, service string) (int, error)
}

// SystemResolver resolves addresses with the name service of the system.
type SystemResolver struct {
	// Lookup is the name service, net.DefaultResolver when nil.
	Lookup LookupResolver
}

var errPortRange = errors.New("port out of range")

var (
	wildcardPassive = [...]netip.Addr{netip.IPv4Unspecified(), netip.IPv6Unspecified()}
	wildcardActive  = [...]netip.Addr{netip.AddrFrom4([4]byte{127, 0, 0, 1}), netip.IPv6Loopback()}
)

type hostAddr struct {
	addr    netip.Addr
	scopeID uint32
}

func (r *SystemResolver) lookup() LookupResolver {
	if r.Lookup != nil {
		return r.Lookup
	}
	return net.DefaultResolver
}

func (r *SystemResolver) Resolve(ctx context.Context, address string, hints Hints) ([]Endpoint, error) {
	host, service, err := SplitAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	port, err := r.lookupPort(ctx, service, hints)
	if err != nil {
		return nil, fmt.Errorf("%w: service=%q: %w", ErrResolution, service, err)
	}

	addrs, err := r.lookupHost(ctx, host, hints)
	if err != nil {
		return nil, fmt.Errorf("%w: host=%q: %w", ErrResolution, host, err)
	}

	addrs = filterFamily(addrs, hints.Family)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: host=%q: no address of family %s", ErrResolution, host, hints.Family)
	}

	protocol := hints.Protocol
	if protocol == network.UNSPEC {
		protocol = protocolOf(hints.Socktype)
	}

	endpoints := make([]Endpoint, len(addrs))
	for i, a := range addrs {
		family := network.INET6
		if a.addr.Is4() {
			family = network.INET
		}
		endpoints[i] = Endpoint{
			Family:   family,
			Socktype: hints.Socktype,
			Protocol: protocol,
			Addr:     network.SockaddrFromAddrPort(netip.AddrPortFrom(a.addr, port), a.scopeID),
		}
	}
	return endpoints, nil
}

func (r *SystemResolver) lookupPort(ctx context.Context, service string, hints Hints) (uint16, error) {
	if isNumeric(service) {
		port, err := strconv.ParseUint(service, 10, 16)
		if err != nil {
			return 0, errPortRange
		}
		return uint16(port), nil
	}
	proto := "tcp"
	if hints.Socktype == network.DGRAM {
		proto = "udp"
	}
	port, err := r.lookup().LookupPort(ctx, proto, service)
	if err != nil {
		return 0, err
	}
	return uint16(port), nil
}

func (r *SystemResolver) lookupHost(ctx context.Context, host string, hints Hints) ([]hostAddr, error) {
	if IsWildcard(host) {
		wildcard := wildcardActive
		if hints.Passive {
			wildcard = wildcardPassive
		}
		addrs := make([]hostAddr, len(wildcard))
		for i, addr := range wildcard {
			addrs[i] = hostAddr{addr: addr}
		}
		return addrs, nil
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		scopeID, err := zoneIndex(addr.Zone())
		if err != nil {
			return nil, err
		}
		return []hostAddr{{addr: addr.WithZone(""), scopeID: scopeID}}, nil
	}

	ipAddrs, err := r.lookup().LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	addrs := make([]hostAddr, 0, len(ipAddrs))
	for _, ipAddr := range ipAddrs {
		addr, ok := netip.AddrFromSlice(ipAddr.IP)
		if !ok {
			continue
		}
		scopeID, err := zoneIndex(ipAddr.Zone)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, hostAddr{addr: addr.Unmap(), scopeID: scopeID})
	}
	return addrs, nil
}

// filterFamily retains the addresses of the requested family. When IPv6
// addresses are requested and only IPv4 addresses are available, they are
// returned as IPv4-mapped IPv6 addresses.
func filterFamily(addrs []hostAddr, family network.Family) []hostAddr {
	var ipv4, ipv6 []hostAddr
	for _, a := range addrs {
		if a.addr.Is4() {
			ipv4 = append(ipv4, a)
		} else {
			ipv6 = append(ipv6, a)
		}
	}
	switch family {
	case network.INET:
		return ipv4
	case network.INET6:
		if len(ipv6) == 0 {
			for _, a := range ipv4 {
				ipv6 = append(ipv6, hostAddr{addr: netip.AddrFrom16(a.addr.As16())})
			}
		}
		return ipv6
	default:
		return addrs
	}
}

func protocolOf(socktype network.Socktype) network.Protocol {
	switch socktype {
	case network.STREAM:
		return network.TCP
	case network.DGRAM:
		return network.UDP
	default:
		return network.UNSPEC
	}
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
