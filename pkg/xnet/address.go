package xnet

import (
	"strings"
)

const (
	// MaxHostLen is the exclusive upper bound of host names (NI_MAXHOST).
	MaxHostLen = 1025
	// MaxServiceLen is the exclusive upper bound of service names (NI_MAXSERV).
	MaxServiceLen = 32
	// MaxAddressLen is the exclusive upper bound of address strings.
	MaxAddressLen = MaxHostLen + MaxServiceLen + 3
)

// SplitAddress splits an address of the form "host:service", "[host]:service",
// "host" or "[host]" into its host and service components.
//
// The host is split from the service on the last colon, so IPv6 literals
// must be enclosed in brackets when followed by a service. A missing service
// defaults to "0". An empty host or "*" denotes the wildcard address (see
// IsWildcard). Leading spaces of the address and trailing spaces of the
// service are ignored.
func SplitAddress(address string) (host, service string, err error) {
	s := strings.TrimLeft(address, " ")
	if len(s) == 0 {
		return "", "", errSyntax(address, "empty address")
	}
	if len(s) >= MaxAddressLen {
		return "", "", errSyntax(address, "address too long")
	}

	if s[0] == '[' {
		end := strings.IndexByte(s, ']')
		switch {
		case end < 0:
			return "", "", errSyntax(address, "missing ']'")
		case end == 1:
			return "", "", errSyntax(address, "empty brackets")
		}
		host = s[1:end]
		switch rest := s[end+1:]; {
		case rest == "":
		case rest[0] == ':':
			service = rest[1:]
		default:
			return "", "", errSyntax(address, "unexpected characters after ']'")
		}
	} else if i := strings.LastIndexByte(s, ':'); i >= 0 {
		host, service = s[:i], s[i+1:]
	} else {
		host = s
	}

	if len(host) >= MaxHostLen {
		return "", "", errSyntax(address, "host too long")
	}
	if len(service) >= MaxServiceLen {
		return "", "", errSyntax(address, "service too long")
	}

	service = strings.TrimRight(service, " ")
	if service == "" {
		service = "0"
	}
	return host, service, nil
}

// IsWildcard reports whether host designates any address.
func IsWildcard(host string) bool {
	return host == "" || host == "*"
}

// JoinAddress is the inverse of SplitAddress, it encloses hosts containing a
// colon in brackets.
func JoinAddress(host, service string) string {
	if strings.IndexByte(host, ':') >= 0 {
		return "[" + host + "]:" + service
	}
	return host + ":" + service
}
