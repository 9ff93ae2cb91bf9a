package combat

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/bastion/internal/event"
	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/world"
)

// DamageResolver applies weapon and status damage through the
// shield-then-hull model and owns death handling: a killed agent is
// removed from the spatial index, its handle is recycled, and every
// weak reference pointing at it is cleared within the same call, so a
// dangling target reference can never survive the tick.
type DamageResolver struct {
	arena *world.Arena
	index *world.SpatialIndex
	bus   *event.Bus
	rng   *rand.Rand

	// spillover carries the unapplied remainder of a shield-depleting
	// hit into the hull. See damage model notes in DESIGN.md.
	spillover bool
}

// NewDamageResolver creates a resolver over the shared arena and index.
// rng drives status-effect chance rolls and must be the engine's seeded
// source for reproducible runs.
func NewDamageResolver(arena *world.Arena, index *world.SpatialIndex, bus *event.Bus, rng *rand.Rand, spillover bool) *DamageResolver {
	return &DamageResolver{
		arena:     arena,
		index:     index,
		bus:       bus,
		rng:       rng,
		spillover: spillover,
	}
}

// Apply resolves one weapon hit against target.
// Shield absorbs first at the weapon's shield multiplier; once depleted
// the remainder of the depleting hit spills into hull at the hull
// multiplier (when spillover is enabled). Unshielded targets take
// raw × hull multiplier straight to hull. A hit on a freed handle is a
// no-op.
func (d *DamageResolver) Apply(target model.Handle, raw float64, w *model.WeaponProfile) {
	a, ok := d.arena.Get(target)
	if !ok {
		return
	}

	if a.Shield > 0 {
		effective := raw * w.ShieldMult
		before := a.Shield
		if effective >= before {
			a.Shield = 0
			if spill := effective - before; d.spillover && spill > 0 {
				d.damageHull(a, spill*w.HullMult)
			}
		} else {
			a.Shield = before - effective
		}
	} else {
		d.damageHull(a, raw*w.HullMult)
	}

	if a.Health <= 0 {
		d.Kill(a, event.CauseHull)
		return
	}

	if w.Status != nil && d.rng.Float64() < w.Status.Chance {
		a.ApplyStatus(w.Status.Kind, w.Status.Duration, w.Status.Magnitude)
		d.bus.Publish(event.StatusApplied{
			Target:   a.Handle,
			Kind:     w.Status.Kind,
			Duration: w.Status.Duration,
		})
	}
}

// ApplyDirect deals amount straight to hull, bypassing shield and
// weapon multipliers. Used for damage-over-time status ticks.
func (d *DamageResolver) ApplyDirect(target model.Handle, amount float64) {
	a, ok := d.arena.Get(target)
	if !ok {
		return
	}
	d.damageHull(a, amount)
	if a.Health <= 0 {
		d.Kill(a, event.CauseHull)
	}
}

// StatusTick advances status effects by one simulation second: burn
// kinds re-enter the damage path directly against hull, suppress kinds
// scale the passive shield regeneration applied at the end of the tick.
// Runs once per simulated second, not per frame.
func (d *DamageResolver) StatusTick() {
	d.arena.ForEachAlive(func(a *model.Agent) bool {
		burn := 0.0
		regen := a.ShieldRegen

		kept := a.Statuses[:0]
		for _, st := range a.Statuses {
			switch st.Kind {
			case model.StatusBurn:
				burn += st.Magnitude
			case model.StatusSuppress:
				regen *= 1 - st.Magnitude
			}
			st.Remaining -= 1
			if st.Remaining > 0 {
				kept = append(kept, st)
			}
		}
		a.Statuses = kept

		if burn > 0 {
			d.ApplyDirect(a.Handle, burn)
			if !a.Alive {
				return true
			}
		}

		if regen > 0 && a.Shield < a.MaxShield {
			a.Shield = min(a.Shield+regen, a.MaxShield)
		}
		return true
	})
}

// Kill destroys an agent: emits the death (and reward) events, removes
// it from the spatial index, clears every weak target reference aimed
// at it, and recycles the handle — all atomically within this call.
func (d *DamageResolver) Kill(a *model.Agent, cause string) {
	if !a.Alive {
		return
	}
	h := a.Handle

	d.bus.Publish(event.Died{
		Handle:  h,
		Faction: a.Faction,
		Kind:    a.Kind,
		Cause:   cause,
		Pos:     a.Pos,
	})
	// Only defeated hostiles pay out: a ram, breach, or bounds exit is
	// the hostile succeeding, not the defense.
	if a.Kind == model.KindHostile && a.Reward > 0 && cause == event.CauseHull {
		d.bus.Publish(event.Reward{Faction: a.Faction, Amount: a.Reward})
	}

	d.index.Remove(h)

	// Clear weak references before the handle can be reissued.
	d.arena.ForEachAlive(func(other *model.Agent) bool {
		if other.TargetValid && other.Target == h {
			other.ClearTarget()
		}
		return true
	})

	d.arena.Free(h)

	if IsDebugEnabled() {
		slog.Debug("agent destroyed",
			"handle", h,
			"kind", a.Kind,
			"faction", a.Faction,
			"cause", cause)
	}
}

// damageHull subtracts amount from hull, clamped at zero.
func (d *DamageResolver) damageHull(a *model.Agent, amount float64) {
	a.Health -= amount
	if a.Health < 0 {
		a.Health = 0
	}
}
