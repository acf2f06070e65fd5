// Package stream declares generic interfaces for streams of values.
package stream

import "io"

// Writer is an interface implemented by types that consume a stream of values
// of type T.
type Writer[T any] interface {
	// Writes values to the stream, returning the number of values written and
	// any error that occurred.
	Write(values []T) (int, error)
}

// WriteCloser represents a closable stream of values of T. Writers which
// buffer values flush them when closed.
type WriteCloser[T any] interface {
	Writer[T]
	io.Closer
}

// Copy writes values to w and closes it, returning the first error that
// occurred.
func Copy[T any](w WriteCloser[T], values ...T) error {
	_, err := w.Write(values)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}
