package ai

import (
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/world"
)

// Steering tuning. Lateral motion is blended with the objective pull and
// renormalized, so hostiles never exceed their configured speed.
const (
	strafeFrequency  = 2.0
	strafeWeight     = 0.6
	flankOffset      = 160.0
	flankCloseRange  = 120.0
	swarmSeparation  = 32.0
	swarmPushWeight  = 0.8
	hunterSeekRadius = 400.0
)

// Intent is one hostile's movement decision for the coming tick.
// Intents are computed against a frozen world and committed serially,
// so workers never race on agent state.
type Intent struct {
	Handle      model.Handle
	Velocity    model.Vec2
	EnterFrenzy bool
}

// Engine computes per-tick movement intents for all live hostiles.
// The compute phase is read-only and fans out across workers; each
// worker writes a disjoint range of the shared result slice.
type Engine struct {
	arena     *world.Arena
	index     *world.SpatialIndex
	objective model.Vec2
	workers   int

	handles []model.Handle
	intents []Intent
}

// NewEngine creates a behavior engine driving hostiles toward objective.
// workers <= 0 picks a conservative count from the machine size.
func NewEngine(arena *world.Arena, index *world.SpatialIndex, objective model.Vec2, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
		if workers > 4 {
			workers = 4
		}
	}
	return &Engine{
		arena:     arena,
		index:     index,
		objective: objective,
		workers:   workers,
	}
}

// ComputeIntents returns one intent per live hostile, ordered by handle.
// The returned slice is reused across calls: commit it before the next
// tick. simTime drives time-dependent steering such as strafe oscillation.
func (e *Engine) ComputeIntents(simTime float64) []Intent {
	e.handles = e.handles[:0]
	e.arena.ForEachAlive(func(a *model.Agent) bool {
		if a.Kind == model.KindHostile {
			e.handles = append(e.handles, a.Handle)
		}
		return true
	})
	if len(e.handles) == 0 {
		return nil
	}

	if cap(e.intents) < len(e.handles) {
		e.intents = make([]Intent, len(e.handles))
	}
	e.intents = e.intents[:len(e.handles)]

	chunk := (len(e.handles) + e.workers - 1) / e.workers
	var g errgroup.Group
	for start := 0; start < len(e.handles); start += chunk {
		end := min(start+chunk, len(e.handles))
		g.Go(func() error {
			for i := start; i < end; i++ {
				a, ok := e.arena.Get(e.handles[i])
				if !ok {
					e.intents[i] = Intent{Handle: e.handles[i]}
					continue
				}
				e.intents[i] = e.intentFor(a, simTime)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	return e.intents
}

// intentFor steers one hostile. Must not mutate any agent.
func (e *Engine) intentFor(a *model.Agent, simTime float64) Intent {
	in := Intent{Handle: a.Handle}

	speed := a.Speed
	frenzied := a.Frenzied
	if a.Variant == model.VariantKamikaze && !frenzied &&
		a.FrenzyThreshold > 0 && a.HealthRatio() <= a.FrenzyThreshold {
		in.EnterFrenzy = true
		frenzied = true
		if IsDebugEnabled() {
			slog.Debug("kamikaze frenzy triggered",
				"handle", a.Handle,
				"health_ratio", a.HealthRatio())
		}
	}
	if frenzied && a.FrenzySpeedMult > 0 {
		speed *= a.FrenzySpeedMult
	}

	var dir model.Vec2
	switch a.Variant {
	case model.VariantStrafe:
		dir = e.strafeDir(a, simTime)
	case model.VariantFlank:
		dir = e.flankDir(a)
	case model.VariantSwarm:
		dir = e.swarmDir(a)
	case model.VariantHunter:
		dir = e.hunterDir(a)
	default:
		// Direct approach; frenzied kamikazes also charge straight in.
		dir = e.objective.Sub(a.Pos).Normalized()
	}

	in.Velocity = dir.Scale(speed)
	return in
}

// strafeDir blends the objective pull with a sinusoidal lateral sweep.
// StrafePhase desynchronizes hostiles spawned on the same tick.
func (e *Engine) strafeDir(a *model.Agent, simTime float64) model.Vec2 {
	toward := e.objective.Sub(a.Pos).Normalized()
	lateral := toward.Perp().Scale(strafeWeight * math.Sin(strafeFrequency*simTime+a.StrafePhase))
	return toward.Add(lateral).Normalized()
}

// flankDir approaches a point offset to the hostile's flank side, then
// switches to a direct approach once close to the objective.
func (e *Engine) flankDir(a *model.Agent) model.Vec2 {
	toward := e.objective.Sub(a.Pos)
	if toward.Len() <= flankCloseRange {
		return toward.Normalized()
	}
	offset := toward.Normalized().Perp().Scale(a.FlankSign * flankOffset)
	return e.objective.Add(offset).Sub(a.Pos).Normalized()
}

// swarmDir is a direct approach plus separation from packed neighbors,
// keeping clustered spawns from collapsing onto a single line.
func (e *Engine) swarmDir(a *model.Agent) model.Vec2 {
	toward := e.objective.Sub(a.Pos).Normalized()

	var push model.Vec2
	e.index.QueryRadius(a.Pos.X, a.Pos.Y, swarmSeparation, func(h model.Handle) bool {
		if h == a.Handle {
			return true
		}
		other, ok := e.arena.Get(h)
		if !ok || other.Kind != model.KindHostile {
			return true
		}
		away := a.Pos.Sub(other.Pos)
		dist := away.Len()
		if dist >= swarmSeparation || dist == 0 {
			return true
		}
		// Closer neighbors push harder.
		push = push.Add(away.Normalized().Scale(1 - dist/swarmSeparation))
		return true
	})

	return toward.Add(push.Scale(swarmPushWeight)).Normalized()
}

// hunterDir seeks the nearest attacker platform, falling back to the
// objective when none is in seek range. Ties resolve to the lower handle.
func (e *Engine) hunterDir(a *model.Agent) model.Vec2 {
	best := model.InvalidHandle
	bestDistSq := math.Inf(1)
	var bestPos model.Vec2

	e.index.QueryRadius(a.Pos.X, a.Pos.Y, hunterSeekRadius, func(h model.Handle) bool {
		cand, ok := e.arena.Get(h)
		if !ok || cand.Kind != model.KindAttacker {
			return true
		}
		distSq := a.Pos.DistanceSquared(cand.Pos)
		if distSq > hunterSeekRadius*hunterSeekRadius {
			return true
		}
		if distSq < bestDistSq || (distSq == bestDistSq && h < best) {
			best = h
			bestDistSq = distSq
			bestPos = cand.Pos
		}
		return true
	})

	if best == model.InvalidHandle {
		return e.objective.Sub(a.Pos).Normalized()
	}
	return bestPos.Sub(a.Pos).Normalized()
}
