package combat

import (
	"math"

	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/world"
)

// TargetSelector keeps attacker target references valid and picks new
// targets from the spatial index. Selection is deterministic: among
// in-range hostiles the closest wins, and at equal distance the lower
// handle wins. Targets are not reserved — several attackers may lock
// the same hostile.
type TargetSelector struct {
	arena *world.Arena
	index *world.SpatialIndex
}

// NewTargetSelector creates a selector over the shared arena and index.
func NewTargetSelector(arena *world.Arena, index *world.SpatialIndex) *TargetSelector {
	return &TargetSelector{arena: arena, index: index}
}

// Retarget revalidates att's current target and reselects if it died or
// left range. Reselection happens within the same tick, so an attacker
// never idles a full tick just because its target dropped.
func (s *TargetSelector) Retarget(att *model.Agent) {
	rangeSq := att.Range * att.Range

	if att.TargetValid {
		if tgt, ok := s.arena.Get(att.Target); ok && tgt.Kind == model.KindHostile {
			if att.Pos.DistanceSquared(tgt.Pos) <= rangeSq {
				return
			}
		}
		// Died or out of range: clear and fall through to reselection.
		att.ClearTarget()
	}

	// Zero or negative reach never acquires.
	if att.Range <= 0 {
		return
	}

	best := model.InvalidHandle
	bestDistSq := math.Inf(1)
	s.index.QueryRadius(att.Pos.X, att.Pos.Y, att.Range, func(h model.Handle) bool {
		cand, ok := s.arena.Get(h)
		if !ok || cand.Kind != model.KindHostile {
			return true
		}
		distSq := att.Pos.DistanceSquared(cand.Pos)
		if distSq > rangeSq {
			return true
		}
		// Tie-break on handle value for reproducible runs.
		if distSq < bestDistSq || (distSq == bestDistSq && h < best) {
			best = h
			bestDistSq = distSq
		}
		return true
	})

	if best != model.InvalidHandle {
		att.SetTarget(best)
	}
}
