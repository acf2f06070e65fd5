package network

import (
	"golang.org/x/sys/unix"
)

const (
	EADDRINUSE    = unix.EADDRINUSE
	EADDRNOTAVAIL = unix.EADDRNOTAVAIL
	EAGAIN        = unix.EAGAIN
	EAFNOSUPPORT  = unix.EAFNOSUPPORT
	EBADF         = unix.EBADF
	ECONNABORTED  = unix.ECONNABORTED
	ECONNREFUSED  = unix.ECONNREFUSED
	ECONNRESET    = unix.ECONNRESET
	EHOSTUNREACH  = unix.EHOSTUNREACH
	EINVAL        = unix.EINVAL
	EINTR         = unix.EINTR
	EINPROGRESS   = unix.EINPROGRESS
	EISCONN       = unix.EISCONN
	ENETUNREACH   = unix.ENETUNREACH
	ENOENT        = unix.ENOENT
	ENOPROTOOPT   = unix.ENOPROTOOPT
	ENOSYS        = unix.ENOSYS
	ENOTCONN      = unix.ENOTCONN
)

const (
	UNSPECIFIED Family = unix.AF_UNSPEC
	UNIX        Family = unix.AF_UNIX
	INET        Family = unix.AF_INET
	INET6       Family = unix.AF_INET6
)

const (
	STREAM    Socktype = unix.SOCK_STREAM
	DGRAM     Socktype = unix.SOCK_DGRAM
	SEQPACKET Socktype = unix.SOCK_SEQPACKET
)

const (
	TRUNC   = unix.MSG_TRUNC
	PEEK    = unix.MSG_PEEK
	WAITALL = unix.MSG_WAITALL
)

const (
	SHUTRD   = unix.SHUT_RD
	SHUTWR   = unix.SHUT_WR
	SHUTRDWR = unix.SHUT_RDWR
)

const (
	SOL_SOCKET   = unix.SOL_SOCKET
	SO_REUSEADDR = unix.SO_REUSEADDR
	SO_REUSEPORT = unix.SO_REUSEPORT
	SO_BROADCAST = unix.SO_BROADCAST
	SO_KEEPALIVE = unix.SO_KEEPALIVE
	SO_RCVBUF    = unix.SO_RCVBUF
	SO_SNDBUF    = unix.SO_SNDBUF
	SO_TYPE      = unix.SO_TYPE
	SO_ERROR     = unix.SO_ERROR
	IPPROTO_TCP  = unix.IPPROTO_TCP
	TCP_NODELAY  = unix.TCP_NODELAY
)

type Sockaddr = unix.Sockaddr
type SockaddrInet4 = unix.SockaddrInet4
type SockaddrInet6 = unix.SockaddrInet6
type SockaddrUnix = unix.SockaddrUnix

// MaxPathLen is the capacity of the path field of unix socket addresses,
// including the terminating null byte.
const MaxPathLen = len(unix.RawSockaddrUnix{}.Path)

// This function is used to automatically retry syscalls when they return
// EINTR due to having handled a signal instead of executing. The sockets are
// blocking, so a signal delivered to the thread while it waits in the kernel
// must not surface as an error to the program.
func ignoreEINTR(f func() error) error {
	for {
		if err := f(); err != EINTR {
			return err
		}
	}
}

func ignoreEINTR2[F func() (R, error), R any](f F) (R, error) {
	for {
		v, err := f()
		if err != EINTR {
			return v, err
		}
	}
}

func ignoreEINTR3[F func() (R1, R2, error), R1, R2 any](f F) (R1, R2, error) {
	for {
		v1, v2, err := f()
		if err != EINTR {
			return v1, v2, err
		}
	}
}

// Recv receives data from fd into b, retrying on EINTR. A return of zero bytes
// and no error indicates that the peer performed an orderly shutdown.
func Recv(fd int, b []byte) (int, error) {
	for {
		n, _, err := unix.Recvfrom(fd, b, 0)
		if err != EINTR {
			if err != nil {
				return -1, err
			}
			return n, nil
		}
	}
}
