package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := NewPool(func() []int { return make([]int, 0, 4) }, func(s []int) []int { return s[:0] })

	s := p.Get()
	assert.Empty(t, s)
	s = append(s, 1, 2, 3)
	p.Put(s)

	// sync.Pool may or may not hand the same buffer back; either way it is empty.
	assert.Empty(t, p.Get())
}

func TestSlicePoolZeroesElements(t *testing.T) {
	p := NewSlicePool[*int](2)

	buf := p.Get()
	v := 7
	*buf = append(*buf, &v, &v, &v)
	backing := (*buf)[:3]
	p.Put(buf)

	assert.Empty(t, *buf)
	assert.Nil(t, backing[0])
	assert.Nil(t, backing[2])
}
