package xnet

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned for malformed address strings.
	ErrSyntax = errors.New("invalid address syntax")

	// ErrResolution is returned when an address could not be resolved to a
	// list of endpoints. Syntax errors detected during resolution match both
	// ErrResolution and ErrSyntax.
	ErrResolution = errors.New("address resolution failed")

	// ErrSocket wraps errors of the operating system refusing to create a
	// socket for an endpoint.
	ErrSocket = errors.New("socket creation failed")

	// ErrNoEndpoint is returned when every candidate endpoint failed. The error
	// also wraps the error of the last attempt, if any.
	ErrNoEndpoint = errors.New("no endpoint succeeded")

	// ErrHookRejected wraps errors returned by PreCall and PostCall hooks.
	ErrHookRejected = errors.New("endpoint rejected by hook")

	// ErrPathTooLong is returned when a unix socket path does not fit in the
	// path field of socket addresses.
	ErrPathTooLong = errors.New("unix socket path too long")

	ErrUnknownNetwork  = errors.New("unknown network")
	ErrMissingAddress  = errors.New("missing address")
	ErrAddressMismatch = errors.New("local and remote unix socket paths differ")
	ErrNotImplemented  = errors.New("not implemented")
)

func errUnknownNetwork(network string) error {
	return fmt.Errorf("network=%q: %w", network, ErrUnknownNetwork)
}

// errSyntax shortens the address to its first 32 bytes, inputs may be up to
// MaxAddressLen long.
func errSyntax(address, reason string) error {
	if len(address) > 32 {
		address = address[:32] + "..."
	}
	return fmt.Errorf("address=%q: %s: %w", address, reason, ErrSyntax)
}

func errHookRejected(hook string, err error) error {
	return fmt.Errorf("%s: %w: %w", hook, ErrHookRejected, err)
}

func errNoEndpoint(op, network, address string, last error) error {
	if last == nil {
		return fmt.Errorf("%s %s %s: %w", op, network, address, ErrNoEndpoint)
	}
	return fmt.Errorf("%s %s %s: %w: %w", op, network, address, ErrNoEndpoint, last)
}
