// Package zbytes implements a growable byte accumulator used to receive data
// from sockets without losing bytes that were only partially consumed.
//
// The valid data of a Bytes value is the window [pos, limit) of its backing
// array, and the free space is [limit, cap). Data is appended at limit and
// read at pos:
//
//	0 <= pos <= limit <= cap
//
// Appending more bytes than the free space, or reading more bytes than are
// available, is a contract violation and panics. Callers must call Reserve
// before appending data of unknown size.
package zbytes

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/sys/cpu"

	"github.com/stealthrocket/xnet/internal/network"
)

const (
	// DefaultSize is the capacity of buffers initialized with a
	// non-positive size hint.
	DefaultSize = (1 << 16) - 8

	// MaxSize is the largest capacity that a buffer may grow to.
	MaxSize = math.MaxInt32
)

// ErrAllocation is returned when a buffer cannot be grown to the requested
// capacity.
var ErrAllocation = errors.New("zbytes: cannot allocate buffer")

var nativeEndian binary.ByteOrder = binary.LittleEndian

func init() {
	if cpu.IsBigEndian {
		nativeEndian = binary.BigEndian
	}
}

// Bytes is a byte accumulator. The zero value is an empty buffer with no
// capacity; use New or Init to allocate the backing array.
type Bytes struct {
	data  []byte
	pos   int
	limit int
}

// New allocates a buffer with a capacity of hint bytes, or DefaultSize if
// hint is not positive.
func New(hint int) *Bytes {
	b := new(Bytes)
	if err := b.Init(hint); err != nil {
		panic(err)
	}
	return b
}

// Init allocates the backing array of b, discarding any previous content.
func (b *Bytes) Init(hint int) error {
	if hint <= 0 {
		hint = DefaultSize
	}
	if hint > MaxSize {
		return fmt.Errorf("%w: size=%d", ErrAllocation, hint)
	}
	b.data = make([]byte, hint)
	b.pos, b.limit = 0, 0
	return nil
}

// Destroy releases the backing array.
func (b *Bytes) Destroy() {
	b.data = nil
	b.pos, b.limit = 0, 0
}

// Data returns the valid data window. The slice aliases the backing array and
// is valid until the next call that modifies b.
func (b *Bytes) Data() []byte { return b.data[b.pos:b.limit:b.limit] }

// Free returns the free space after limit.
func (b *Bytes) Free() []byte { return b.data[b.limit:] }

func (b *Bytes) Pos() int { return b.pos }

func (b *Bytes) Limit() int { return b.limit }

func (b *Bytes) Cap() int { return len(b.data) }

// Available is the number of bytes in the valid data window.
func (b *Bytes) Available() int { return b.limit - b.pos }

// FreeSize is the number of bytes that can be appended without growing.
func (b *Bytes) FreeSize() int { return len(b.data) - b.limit }

func (b *Bytes) Empty() bool { return b.pos == b.limit }

// Zero discards all data, keeping the capacity.
func (b *Bytes) Zero() { b.pos, b.limit = 0, 0 }

// Reserve ensures that at least n bytes can be appended. When the free space
// is too small the buffer grows to the larger of limit+n and twice its
// current capacity. The valid data is preserved.
func (b *Bytes) Reserve(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative reservation %d", ErrAllocation, n)
	}
	if b.FreeSize() >= n {
		return nil
	}
	if n > MaxSize-b.limit {
		return fmt.Errorf("%w: reservation of %d bytes at limit %d", ErrAllocation, n, b.limit)
	}
	size := b.limit + n
	if c := 2 * len(b.data); size < c {
		size = min(c, MaxSize)
	}
	return b.Resize(size)
}

// Resize changes the capacity of the buffer to size bytes. The capacity may
// never drop below limit.
func (b *Bytes) Resize(size int) error {
	if size < b.limit || size > MaxSize {
		return fmt.Errorf("%w: size=%d limit=%d", ErrAllocation, size, b.limit)
	}
	data := make([]byte, size)
	copy(data, b.data[:b.limit])
	b.data = data
	return nil
}

// Move shifts the valid data window to the start of the buffer to reclaim the
// space of bytes that were already consumed.
func (b *Bytes) Move() {
	if b.pos == 0 {
		return
	}
	if b.pos == b.limit {
		b.pos, b.limit = 0, 0
		return
	}
	n := copy(b.data, b.data[b.pos:b.limit])
	b.pos, b.limit = 0, n
}

// Consume marks n bytes of the valid data as processed. Draining the window
// resets both cursors to zero.
func (b *Bytes) Consume(n int) {
	if n < 0 || n > b.Available() {
		panic(fmt.Sprintf("zbytes: consume %d bytes with %d available", n, b.Available()))
	}
	b.pos += n
	if b.pos == b.limit {
		b.pos, b.limit = 0, 0
	}
}

// Skip moves pos by offset bytes, which may be negative to rewind, and returns
// the previous position.
func (b *Bytes) Skip(offset int) int {
	pos := b.pos + offset
	if pos < 0 || pos > b.limit {
		panic(fmt.Sprintf("zbytes: skip %d bytes from %d is out of bounds [0,%d]", offset, b.pos, b.limit))
	}
	prev := b.pos
	b.pos = pos
	return prev
}

func (b *Bytes) grow(n int) []byte {
	if n > b.FreeSize() {
		panic(fmt.Sprintf("zbytes: append %d bytes with %d free", n, b.FreeSize()))
	}
	p := b.data[b.limit : b.limit+n]
	b.limit += n
	return p
}

func (b *Bytes) next(n int) []byte {
	if n > b.Available() {
		panic(fmt.Sprintf("zbytes: read %d bytes with %d available", n, b.Available()))
	}
	p := b.data[b.pos : b.pos+n]
	b.pos += n
	return p
}

func (b *Bytes) Append(p []byte) { copy(b.grow(len(p)), p) }

func (b *Bytes) AppendString(s string) { copy(b.grow(len(s)), s) }

func (b *Bytes) AppendByte(c byte) { b.grow(1)[0] = c }

func (b *Bytes) AppendUint8(v uint8) { b.grow(1)[0] = v }

func (b *Bytes) AppendUint16(v uint16) { nativeEndian.PutUint16(b.grow(2), v) }

func (b *Bytes) AppendUint32(v uint32) { nativeEndian.PutUint32(b.grow(4), v) }

func (b *Bytes) AppendUint64(v uint64) { nativeEndian.PutUint64(b.grow(8), v) }

func (b *Bytes) AppendInt8(v int8) { b.AppendUint8(uint8(v)) }

func (b *Bytes) AppendInt16(v int16) { b.AppendUint16(uint16(v)) }

func (b *Bytes) AppendInt32(v int32) { b.AppendUint32(uint32(v)) }

func (b *Bytes) AppendInt64(v int64) { b.AppendUint64(uint64(v)) }

func (b *Bytes) ReadByte() byte { return b.next(1)[0] }

func (b *Bytes) ReadUint8() uint8 { return b.next(1)[0] }

func (b *Bytes) ReadUint16() uint16 { return nativeEndian.Uint16(b.next(2)) }

func (b *Bytes) ReadUint32() uint32 { return nativeEndian.Uint32(b.next(4)) }

func (b *Bytes) ReadUint64() uint64 { return nativeEndian.Uint64(b.next(8)) }

func (b *Bytes) ReadInt8() int8 { return int8(b.ReadUint8()) }

func (b *Bytes) ReadInt16() int16 { return int16(b.ReadUint16()) }

func (b *Bytes) ReadInt32() int32 { return int32(b.ReadUint32()) }

func (b *Bytes) ReadInt64() int64 { return int64(b.ReadUint64()) }

// AppendSocket receives data from the socket fd into the free space of the
// buffer with a single receive call, retried when interrupted by a signal.
//
// A return of zero bytes means that the peer performed an orderly shutdown
// (or that the buffer has no free space). On error, n is -1.
func (b *Bytes) AppendSocket(fd int) (int, error) {
	n, err := network.Recv(fd, b.Free())
	if err != nil {
		return -1, err
	}
	b.limit += n
	return n, nil
}

// AppendFrom reads from r once into the free space of the buffer.
func (b *Bytes) AppendFrom(r io.Reader) (int, error) {
	n, err := r.Read(b.Free())
	if n > 0 {
		b.limit += n
	}
	return n, err
}

// Token extracts the next token of the valid data window with split, which
// follows the contract of bufio.SplitFunc. The token is consumed from the
// buffer; a nil token with a nil error means more data is needed.
//
// The returned slice aliases the backing array, it must be copied before the
// buffer is modified again.
func (b *Bytes) Token(split bufio.SplitFunc, atEOF bool) ([]byte, error) {
	data := b.Data()
	if len(data) == 0 && !atEOF {
		return nil, nil
	}
	advance, token, err := split(data, atEOF)
	if err != nil && err != bufio.ErrFinalToken {
		return nil, err
	}
	if advance < 0 || advance > len(data) {
		return nil, fmt.Errorf("zbytes: split function advanced %d bytes out of %d", advance, len(data))
	}
	b.Consume(advance)
	return token, err
}
