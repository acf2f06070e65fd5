package xnet

import (
	"github.com/stealthrocket/xnet/internal/network"
)

// Kind describes a network name such as "tcp" or "unixgram".
type Kind struct {
	Name     string
	Family   network.Family
	Socktype network.Socktype
	Protocol network.Protocol
}

var kinds = [...]Kind{
	{"tcp", network.UNSPECIFIED, network.STREAM, network.TCP},
	{"tcp4", network.INET, network.STREAM, network.TCP},
	{"tcp6", network.INET6, network.STREAM, network.TCP},
	{"udp", network.UNSPECIFIED, network.DGRAM, network.UDP},
	{"udp4", network.INET, network.DGRAM, network.UDP},
	{"udp6", network.INET6, network.DGRAM, network.UDP},
	{"unix", network.UNIX, network.STREAM, network.UNSPEC},
	{"unixgram", network.UNIX, network.DGRAM, network.UNSPEC},
	{"unixpacket", network.UNIX, network.SEQPACKET, network.UNSPEC},
}

// ParseKind returns the kind of the network name, one of tcp, tcp4, tcp6,
// udp, udp4, udp6, unix, unixgram, or unixpacket.
func ParseKind(name string) (Kind, error) {
	for _, k := range kinds {
		if k.Name == name {
			return k, nil
		}
	}
	return Kind{}, errUnknownNetwork(name)
}

func (k Kind) String() string { return k.Name }

func (k Kind) IsTCP() bool { return k.Protocol == network.TCP }

func (k Kind) IsUDP() bool { return k.Protocol == network.UDP }

func (k Kind) IsUnix() bool { return k.Family == network.UNIX }

// IsConnectionOriented reports whether sockets of this kind accept
// connections after a call to listen.
func (k Kind) IsConnectionOriented() bool { return k.Socktype != network.DGRAM }

func (k Kind) hints(passive bool) Hints {
	return Hints{
		Family:   k.Family,
		Socktype: k.Socktype,
		Protocol: k.Protocol,
		Passive:  passive,
	}
}
