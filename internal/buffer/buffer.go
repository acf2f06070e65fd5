// Package buffer pools the byte accumulators used to receive data from
// sockets.
package buffer

import (
	"sync"

	"github.com/stealthrocket/xnet/pkg/zbytes"
)

const DefaultSize = zbytes.DefaultSize

// Pool recycles accumulators of at least Size bytes of capacity. The zero
// value is a pool of DefaultSize accumulators.
type Pool struct {
	Size int
	pool sync.Pool
}

func (p *Pool) size() int {
	if p.Size > 0 {
		return p.Size
	}
	return DefaultSize
}

// Get returns an empty accumulator.
func (p *Pool) Get() *zbytes.Bytes {
	if b, _ := p.pool.Get().(*zbytes.Bytes); b != nil {
		if b.Cap() >= p.size() {
			return b
		}
		b.Destroy()
	}
	return zbytes.New(p.size())
}

// Put discards the content of b and returns it to the pool.
func (p *Pool) Put(b *zbytes.Bytes) {
	if b != nil {
		b.Zero()
		p.pool.Put(b)
	}
}

// Release returns *buf to the pool and clears the reference.
func Release(buf **zbytes.Bytes, pool *Pool) {
	if b := *buf; b != nil {
		*buf = nil
		pool.Put(b)
	}
}

// Align rounds size up to a multiple of to.
func Align(size, to int) int {
	return ((size + (to - 1)) / to) * to
}
