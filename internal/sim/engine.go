package sim

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/bastion/internal/ai"
	"github.com/udisondev/bastion/internal/combat"
	"github.com/udisondev/bastion/internal/config"
	"github.com/udisondev/bastion/internal/event"
	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/wave"
	"github.com/udisondev/bastion/internal/world"
)

// Stats accumulates run totals for the statistics repository.
type Stats struct {
	WavesCleared      int
	HostilesDestroyed int
	RewardEarned      int64
	ObjectiveDamage   float64
}

// Engine owns the world state and runs the per-tick pipeline:
// behavior intents, serialized commit and integration, spatial index
// maintenance, objective collisions, targeting, combat, the periodic
// status tick, and wave bookkeeping — in that fixed order every tick.
//
// The engine is simulation-time driven: a zero tick delta freezes every
// cooldown and timer, which is how pausing is modeled.
type Engine struct {
	arena *world.Arena
	index *world.SpatialIndex
	bus   *event.Bus
	rng   *rand.Rand

	behavior *ai.Engine
	selector *combat.TargetSelector
	resolver *combat.CombatResolver
	damage   *combat.DamageResolver
	waves    *wave.Orchestrator

	bounds          world.Bounds
	objectivePos    model.Vec2
	objectiveRadius float64
	objectiveHealth float64

	simTime     float64
	statusAccum float64
	stats       Stats

	// Scratch handle lists reused across ticks.
	moving      []model.Handle
	attackers   []model.Handle
	projectiles []model.Handle
}

// NewEngine wires the full simulation from validated configuration.
// All randomness (status rolls, formation jitter) flows from one seeded
// source, so a seed plus a placement sequence reproduces a run exactly.
func NewEngine(cfg config.Sim, content *config.Content, bus *event.Bus) *Engine {
	bounds := world.Bounds{
		MinX: cfg.World.MinX,
		MinY: cfg.World.MinY,
		MaxX: cfg.World.MaxX,
		MaxY: cfg.World.MaxY,
	}
	arena := world.NewArena(cfg.PoolCapacity)
	index := world.NewSpatialIndex(bounds, cfg.CellSize)
	rng := rand.New(rand.NewPCG(cfg.Seed, 0))
	objective := model.Vec2{X: cfg.Objective.X, Y: cfg.Objective.Y}

	damage := combat.NewDamageResolver(arena, index, bus, rng, cfg.Spillover)

	e := &Engine{
		arena:           arena,
		index:           index,
		bus:             bus,
		rng:             rng,
		behavior:        ai.NewEngine(arena, index, objective, cfg.AIWorkers),
		selector:        combat.NewTargetSelector(arena, index),
		resolver:        combat.NewCombatResolver(arena, index, damage, bus),
		damage:          damage,
		bounds:          bounds,
		objectivePos:    objective,
		objectiveRadius: cfg.Objective.Radius,
		objectiveHealth: cfg.Objective.Health,
	}
	e.waves = wave.NewOrchestrator(arena, index, bus, rng, wave.Config{
		Bounds:         bounds,
		Objective:      objective,
		Waves:          content.Waves,
		Factions:       content.Factions,
		InterWaveDelay: cfg.InterWaveDelay,
		MaxWaveWait:    cfg.MaxWaveWait,
	})

	bus.Subscribe(func(ev any) {
		switch v := ev.(type) {
		case event.Died:
			if v.Kind == model.KindHostile && v.Cause == event.CauseHull {
				e.stats.HostilesDestroyed++
			}
		case event.Reward:
			e.stats.RewardEarned += v.Amount
		case event.WaveCleared:
			e.stats.WavesCleared++
		}
	})

	return e
}

// Tick advances the simulation by dt seconds. dt == 0 is a pause: no
// state changes at all. The pipeline order is fixed; see Engine docs.
func (e *Engine) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	e.simTime += dt

	// Read-only intent phase, then serialized commit.
	intents := e.behavior.ComputeIntents(e.simTime)
	for i := range intents {
		in := &intents[i]
		a, ok := e.arena.Get(in.Handle)
		if !ok {
			continue
		}
		if in.EnterFrenzy {
			a.Frenzied = true
		}
		a.Vel = in.Velocity
	}

	e.integrate(dt)

	// Projectiles collected before attackers fire: a shot launched this
	// tick resolves its flight starting next tick.
	e.attackers = e.attackers[:0]
	e.projectiles = e.projectiles[:0]
	e.arena.ForEachAlive(func(a *model.Agent) bool {
		switch a.Kind {
		case model.KindAttacker:
			e.attackers = append(e.attackers, a.Handle)
		case model.KindProjectile:
			e.projectiles = append(e.projectiles, a.Handle)
		}
		return true
	})

	for _, h := range e.attackers {
		if a, ok := e.arena.Get(h); ok {
			e.selector.Retarget(a)
		}
	}
	for _, h := range e.attackers {
		if a, ok := e.arena.Get(h); ok {
			e.resolver.TickAttacker(a, dt)
		}
	}
	for _, h := range e.projectiles {
		if p, ok := e.arena.Get(h); ok && p.Kind == model.KindProjectile {
			e.resolver.TickProjectile(p, dt)
		}
	}

	// Status effects advance on simulation seconds, not frames.
	e.statusAccum += dt
	for e.statusAccum >= 1 {
		e.damage.StatusTick()
		e.statusAccum -= 1
	}

	e.waves.Tick(dt)
}

// integrate moves hostiles and projectiles, keeps the spatial index in
// step, destroys agents leaving the world, and resolves objective
// collisions.
func (e *Engine) integrate(dt float64) {
	e.moving = e.moving[:0]
	e.arena.ForEachAlive(func(a *model.Agent) bool {
		if a.Kind != model.KindAttacker {
			e.moving = append(e.moving, a.Handle)
		}
		return true
	})

	for _, h := range e.moving {
		a, ok := e.arena.Get(h)
		if !ok {
			continue
		}
		old := a.Pos
		a.Pos = a.Pos.Add(a.Vel.Scale(dt))

		if !e.bounds.Contains(a.Pos) {
			e.damage.Kill(a, event.CauseBounds)
			continue
		}
		e.index.Move(a.Handle, old.X, old.Y, a.Pos.X, a.Pos.Y)

		if a.Kind == model.KindHostile &&
			a.Pos.DistanceSquared(e.objectivePos) <= e.objectiveRadius*e.objectiveRadius {
			e.hitObjective(a)
		}
	}
}

// hitObjective resolves a hostile reaching the defended point.
// Kamikazes ram with their dedicated ram damage; everything else
// breaches with its faction contact damage. Objective collision damage
// bypasses the weapon shield model entirely. The hostile is consumed
// either way.
func (e *Engine) hitObjective(a *model.Agent) {
	amount := a.ContactDamage
	cause := event.CauseBreach
	if a.Variant == model.VariantKamikaze {
		amount = a.RamDamage
		cause = event.CauseRam
	}

	e.objectiveHealth -= amount
	if e.objectiveHealth < 0 {
		e.objectiveHealth = 0
	}
	e.stats.ObjectiveDamage += amount

	e.bus.Publish(event.ObjectiveDamaged{
		Attacker: a.Handle,
		Amount:   amount,
		Health:   e.objectiveHealth,
	})
	e.damage.Kill(a, cause)

	if e.objectiveHealth == 0 {
		slog.Info("objective destroyed",
			"by", a.Faction,
			"wave", e.waves.CurrentWave())
	}
}

// PlaceAttacker installs a stationary weapon platform at pos.
// The external placement manager decides where and pays for it; the
// engine only simulates the result. Returns false with a back-pressure
// event when the pool is exhausted.
func (e *Engine) PlaceAttacker(pos model.Vec2, w *model.WeaponProfile, reach float64) (model.Handle, bool) {
	a, ok := e.arena.Spawn()
	if !ok {
		e.bus.Publish(event.SpawnSkipped{Source: "placement"})
		return model.InvalidHandle, false
	}

	a.Kind = model.KindAttacker
	a.Faction = "defense"
	a.Pos = pos
	a.Health = 1
	a.MaxHealth = 1
	a.Weapon = w
	a.Range = reach

	e.index.Insert(a.Handle, pos.X, pos.Y)
	e.bus.Publish(event.Spawned{Handle: a.Handle, Faction: a.Faction, Kind: a.Kind, Pos: pos})
	return a.Handle, true
}

// ObjectiveHealth returns the defended point's remaining health.
func (e *Engine) ObjectiveHealth() float64 { return e.objectiveHealth }

// Defeated reports whether the objective has been destroyed.
func (e *Engine) Defeated() bool { return e.objectiveHealth <= 0 }

// Victory reports whether every wave was cleared with the objective
// still standing.
func (e *Engine) Victory() bool { return e.waves.Done() && e.objectiveHealth > 0 }

// Finished reports whether the run is over, either way.
func (e *Engine) Finished() bool { return e.Defeated() || e.waves.Done() }

// SimTime returns accumulated simulation seconds.
func (e *Engine) SimTime() float64 { return e.simTime }

// Stats returns a copy of the run totals so far.
func (e *Engine) Stats() Stats { return e.stats }

// LiveAgents returns the current live agent count.
func (e *Engine) LiveAgents() int { return e.arena.LiveCount() }

// CurrentWave returns the running (or next pending) wave index.
func (e *Engine) CurrentWave() int { return e.waves.CurrentWave() }
