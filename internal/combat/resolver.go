package combat

import (
	"log/slog"
	"math"

	"github.com/udisondev/bastion/internal/event"
	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/world"
)

// CombatResolver gates weapon fire on cooldowns and dispatches by
// delivery mode: instant weapons damage their target immediately,
// projectile weapons allocate a projectile agent whose contact and
// expiry resolve on later ticks.
type CombatResolver struct {
	arena  *world.Arena
	index  *world.SpatialIndex
	damage *DamageResolver
	bus    *event.Bus
}

// NewCombatResolver creates a resolver over the shared arena and index.
func NewCombatResolver(arena *world.Arena, index *world.SpatialIndex, damage *DamageResolver, bus *event.Bus) *CombatResolver {
	return &CombatResolver{
		arena:  arena,
		index:  index,
		damage: damage,
		bus:    bus,
	}
}

// TickAttacker advances one attacker's cooldown and fires when ready.
// After a shot the cooldown resets to 1/fireRate. A failed projectile
// allocation leaves the cooldown expired so the shot retries next tick.
func (r *CombatResolver) TickAttacker(att *model.Agent, dt float64) {
	att.Cooldown -= dt

	if !att.TargetValid {
		// Don't bank shots while idle.
		if att.Cooldown < 0 {
			att.Cooldown = 0
		}
		return
	}
	if att.Cooldown > 0 {
		return
	}

	tgt, ok := r.arena.Get(att.Target)
	if !ok {
		att.ClearTarget()
		return
	}

	w := att.Weapon
	switch w.Mode {
	case model.DeliveryInstant:
		r.damage.Apply(tgt.Handle, w.Damage, w)
		r.bus.Publish(event.Fired{Attacker: att.Handle, Target: tgt.Handle, Weapon: w.Name})

	case model.DeliveryProjectile:
		if !r.launchProjectile(att, tgt) {
			return // pool exhausted, retry next tick
		}
		r.bus.Publish(event.Fired{Attacker: att.Handle, Target: tgt.Handle, Weapon: w.Name})
	}

	att.Cooldown = w.CooldownAfterShot()
}

// launchProjectile allocates a projectile agent carrying a copy of the
// attacker's weapon profile. Returns false on pool exhaustion.
func (r *CombatResolver) launchProjectile(att, tgt *model.Agent) bool {
	p, ok := r.arena.Spawn()
	if !ok {
		r.bus.Publish(event.SpawnSkipped{Source: "projectile", Faction: att.Faction})
		return false
	}

	// Profile copy: the projectile must survive its attacker.
	weapon := *att.Weapon

	p.Kind = model.KindProjectile
	p.Faction = att.Faction
	p.Pos = att.Pos
	p.Weapon = &weapon
	p.Lifetime = weapon.ProjectileLifetime
	p.Homing = weapon.Homing
	p.Vel = tgt.Pos.Sub(att.Pos).Normalized().Scale(weapon.ProjectileSpeed)
	if p.Homing {
		p.SetTarget(tgt.Handle)
	}

	r.index.Insert(p.Handle, p.Pos.X, p.Pos.Y)
	r.bus.Publish(event.Spawned{Handle: p.Handle, Faction: p.Faction, Kind: p.Kind, Pos: p.Pos})

	if IsDebugEnabled() {
		slog.Debug("projectile launched",
			"projectile", p.Handle,
			"attacker", att.Handle,
			"target", tgt.Handle,
			"homing", p.Homing)
	}
	return true
}

// TickProjectile steers a homing projectile, resolves contact against
// hostiles, and frees the projectile when its lifetime budget runs out.
// A homing projectile whose target died flies on along its last heading.
func (r *CombatResolver) TickProjectile(p *model.Agent, dt float64) {
	p.Lifetime -= dt
	w := p.Weapon

	if p.Homing && p.TargetValid {
		if tgt, ok := r.arena.Get(p.Target); ok {
			p.Vel = tgt.Pos.Sub(p.Pos).Normalized().Scale(w.ProjectileSpeed)
		} else {
			p.ClearTarget()
		}
	}

	if hit := r.findContact(p); hit != model.InvalidHandle {
		r.damage.Apply(hit, w.Damage, w)
		r.damage.Kill(p, event.CauseContact)
		return
	}

	if p.Lifetime <= 0 {
		r.damage.Kill(p, event.CauseExpired)
	}
}

// findContact returns the hostile the projectile hits this tick, or
// InvalidHandle. Contact is the closest hostile within the contact
// radius, lower handle on ties.
func (r *CombatResolver) findContact(p *model.Agent) model.Handle {
	radius := p.Weapon.ContactRadius
	radiusSq := radius * radius

	best := model.InvalidHandle
	bestDistSq := math.Inf(1)
	r.index.QueryRadius(p.Pos.X, p.Pos.Y, radius, func(h model.Handle) bool {
		cand, ok := r.arena.Get(h)
		if !ok || cand.Kind != model.KindHostile {
			return true
		}
		distSq := p.Pos.DistanceSquared(cand.Pos)
		if distSq > radiusSq {
			return true
		}
		if distSq < bestDistSq || (distSq == bestDistSq && h < best) {
			best = h
			bestDistSq = distSq
		}
		return true
	})
	return best
}
