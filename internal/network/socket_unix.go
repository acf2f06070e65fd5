package network

import (
	"context"

	"github.com/containerd/log"
	"golang.org/x/sys/unix"
)

func (s *socketFD) release(fd int) {
	s.releaseFunc(fd, closeTraceError)
}

func (s *socketFD) close() error {
	return s.closeFunc(closeTraceError)
}

func closeTraceError(fd int) error {
	err := unix.Close(fd)
	if err != nil {
		log.G(context.TODO()).WithError(err).WithField("fd", fd).Warn("closing socket")
	}
	return err
}
