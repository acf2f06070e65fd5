package network

import (
	"sync/atomic"
)

// socketFD tracks the file descriptor of a socket together with the number of
// system calls currently using it, so that Close does not release the
// descriptor number while another goroutine may still pass it to the kernel.
type socketFD struct {
	state atomic.Uint64 // upper 32 bits: refCount, lower 32 bits: fd
}

func (s *socketFD) init(fd int) {
	s.state.Store(uint64(fd & 0xFFFFFFFF))
}

func (s *socketFD) load() int {
	return int(int32(s.state.Load()))
}

func (s *socketFD) refCount() int {
	return int(s.state.Load() >> 32)
}

func (s *socketFD) acquire() int {
	for {
		oldState := s.state.Load()
		refCount := (oldState >> 32) + 1
		newState := (refCount << 32) | (oldState & 0xFFFFFFFF)

		if int32(oldState) < 0 {
			return -1
		}
		if s.state.CompareAndSwap(oldState, newState) {
			return int(int32(oldState)) // int32->int for sign extension
		}
	}
}

func (s *socketFD) releaseFunc(fd int, closeFD func(int) error) {
	for {
		oldState := s.state.Load()
		refCount := (oldState >> 32) - 1
		newState := (refCount << 32) | (oldState & 0xFFFFFFFF)

		if s.state.CompareAndSwap(oldState, newState) {
			if int32(oldState) < 0 && refCount == 0 {
				closeFD(fd) //nolint:errcheck
			}
			break
		}
	}
}

// closeFunc marks the descriptor closed. The descriptor is released right
// away when no system call holds a reference, otherwise the last call to
// release closes it. Closing twice returns EBADF.
func (s *socketFD) closeFunc(closeFD func(int) error) error {
	for {
		oldState := s.state.Load()
		refCount := oldState >> 32
		newState := oldState | 0xFFFFFFFF

		if s.state.CompareAndSwap(oldState, newState) {
			fd := int32(oldState)
			if fd < 0 {
				return EBADF
			}
			if refCount == 0 {
				return closeFD(int(fd))
			}
			return nil
		}
	}
}
