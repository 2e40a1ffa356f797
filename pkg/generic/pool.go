// Package generic holds small type-safe wrappers over standard containers.
package generic

import "sync"

// Pool is a typed sync.Pool. Values pass through reset, when set, on their
// way back into the pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// NewSlicePool pools slice buffers of the given initial capacity. Returned
// buffers are emptied and their elements zeroed.
func NewSlicePool[E any](capacity int) *Pool[*[]E] {
	return NewPool(
		func() *[]E {
			s := make([]E, 0, capacity)
			return &s
		},
		func(s *[]E) *[]E {
			clear(*s)
			*s = (*s)[:0]
			return s
		},
	)
}
