package sim

import "sync"

// FramePool recycles readback buffers of one fixed length.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(size int) *FramePool {
	return &FramePool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				return make([]float32, size)
			},
		},
	}
}

func (p *FramePool) Size() int { return p.size }

func (p *FramePool) Get() []float32 {
	return p.pool.Get().([]float32)
}

// Put returns buf to the pool. Buffers of another length are dropped.
func (p *FramePool) Put(buf []float32) {
	if len(buf) != p.size {
		return
	}
	clear(buf)
	p.pool.Put(buf)
}
