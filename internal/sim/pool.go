package sim

import "sync"

// FieldPool recycles row-major N² scalar buffers (density or phase
// snapshots) so per-frame consumers avoid reallocating them.
type FieldPool struct {
	pool sync.Pool
	size int
}

func NewFieldPool(size int) *FieldPool {
	return &FieldPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, size)
			},
		},
	}
}

func (p *FieldPool) Get() []float64 {
	return p.pool.Get().([]float64)
}

// Put returns a buffer to the pool, zeroed. Buffers of the wrong length
// are dropped.
func (p *FieldPool) Put(f []float64) {
	if len(f) != p.size {
		return
	}
	for i := range f {
		f[i] = 0
	}
	p.pool.Put(f)
}
