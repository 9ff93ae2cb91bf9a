package world

import "github.com/udisondev/bastion/internal/model"

// Arena owns the agent slots and the entity pool behind them.
// A handle doubles as the slot index, so lookups are O(1) and a weak
// target reference can always be revalidated against the slot's Alive
// flag before use.
type Arena struct {
	pool   *EntityPool
	agents []model.Agent
}

// NewArena creates an arena with the given fixed capacity.
func NewArena(capacity int) *Arena {
	return &Arena{
		pool:   NewEntityPool(capacity),
		agents: make([]model.Agent, capacity),
	}
}

// Pool returns the underlying entity pool.
func (a *Arena) Pool() *EntityPool { return a.pool }

// Spawn acquires a handle and returns its reset slot.
// Returns nil, false when the pool is exhausted.
func (a *Arena) Spawn() (*model.Agent, bool) {
	h, ok := a.pool.Acquire()
	if !ok {
		return nil, false
	}
	slot := &a.agents[h]
	slot.Reset(h)
	slot.Alive = true
	return slot, true
}

// Free marks a slot dead and returns its handle to the pool.
// Freeing an already-freed handle is a safe no-op.
func (a *Arena) Free(h model.Handle) {
	if !a.pool.IsLive(h) {
		return
	}
	a.agents[h].Alive = false
	a.pool.Release(h)
}

// Get returns the live agent for h, or nil, false if h is freed or was
// never issued. Callers holding weak references go through here.
func (a *Arena) Get(h model.Handle) (*model.Agent, bool) {
	if !a.pool.IsLive(h) {
		return nil, false
	}
	return &a.agents[h], true
}

// ForEachAlive iterates all live agents in ascending handle order.
// Ascending order keeps per-tick processing deterministic.
// If fn returns false, iteration stops.
func (a *Arena) ForEachAlive(fn func(*model.Agent) bool) {
	for i := range a.agents {
		if !a.agents[i].Alive {
			continue
		}
		if !fn(&a.agents[i]) {
			return
		}
	}
}

// LiveCount returns the number of live agents.
func (a *Arena) LiveCount() int { return a.pool.LiveCount() }
