package world

import "github.com/udisondev/bastion/internal/model"

// EntityPool issues recycled agent handles from a bounded arena.
// A live handle is never issued twice until explicitly released.
// Freed handles are reissued FIFO so a handle freed this tick is not
// immediately handed to an unrelated agent next tick.
type EntityPool struct {
	capacity int
	live     []bool
	// free is a FIFO queue of released handles; head indexes the next
	// handle to reuse and is compacted when the queue drains.
	free []model.Handle
	head int
	// next is the lowest never-issued handle.
	next      model.Handle
	liveCount int
}

// NewEntityPool creates a pool with the given fixed capacity.
func NewEntityPool(capacity int) *EntityPool {
	return &EntityPool{
		capacity: capacity,
		live:     make([]bool, capacity),
	}
}

// Acquire returns a free handle, or false when the pool is exhausted.
// Exhaustion is not an error: callers skip the spawn and retry later.
func (p *EntityPool) Acquire() (model.Handle, bool) {
	var h model.Handle
	switch {
	case int(p.next) < p.capacity:
		// Prefer never-issued handles so freed ones rest a while.
		h = p.next
		p.next++
	case p.head < len(p.free):
		h = p.free[p.head]
		p.head++
		if p.head == len(p.free) {
			p.free = p.free[:0]
			p.head = 0
		}
	default:
		return model.InvalidHandle, false
	}
	p.live[h] = true
	p.liveCount++
	return h, true
}

// Release returns a handle to the pool.
// Releasing an already-freed or never-issued handle is a safe no-op.
func (p *EntityPool) Release(h model.Handle) {
	if h < 0 || int(h) >= p.capacity || !p.live[h] {
		return
	}
	p.live[h] = false
	p.liveCount--
	p.free = append(p.free, h)
}

// IsLive reports whether h is currently issued.
func (p *EntityPool) IsLive(h model.Handle) bool {
	return h >= 0 && int(h) < p.capacity && p.live[h]
}

// LiveCount returns the number of issued handles.
func (p *EntityPool) LiveCount() int { return p.liveCount }

// Capacity returns the fixed pool capacity.
func (p *EntityPool) Capacity() int { return p.capacity }
