package countdown

import (
	"sync"
)

// SlicePool provides a pool of reusable slices.
type SlicePool[T any] struct {
	pool    sync.Pool
	initCap int
}

// NewSlicePool creates a new slice pool with the specified initial capacity.
func NewSlicePool[T any](initCap int) *SlicePool[T] {
	return &SlicePool[T]{
		initCap: initCap,
		pool: sync.Pool{
			New: func() interface{} {
				s := make([]T, 0, initCap)
				return &s
			},
		},
	}
}

// Get retrieves a slice from the pool.
// The slice is reset to zero length but retains its capacity.
func (p *SlicePool[T]) Get() *[]T {
	s := p.pool.Get().(*[]T)
	*s = (*s)[:0]
	return s
}

// Put returns a slice to the pool. The elements are zeroed first so the
// pool does not keep values reachable.
func (p *SlicePool[T]) Put(s *[]T) {
	if cap(*s) < p.initCap {
		return
	}
	clear(*s)
	p.pool.Put(s)
}
