package wave

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/udisondev/bastion/internal/event"
	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/world"
)

// Formation layout tuning, world units.
const (
	lineSpacing   = 24.0
	clusterJitter = 16.0
	arcDepth      = 48.0
	edgeInset     = 1.0
)

type phase int32

const (
	phaseIdle phase = iota
	phaseSpawning
	phaseDraining
	phaseDone
)

// Orchestrator drives the wave lifecycle: it releases batches on their
// spawn intervals, tracks surviving hostiles through death events, and
// decides when the next wave may begin.
//
// Progression rule: a cleared wave waits out the inter-wave delay before
// the next starts. An uncleared wave is force-advanced after maxWaveWait
// so stragglers cannot stall a run; their kills still count against the
// running total.
type Orchestrator struct {
	arena *world.Arena
	index *world.SpatialIndex
	bus   *event.Bus
	rng   *rand.Rand

	bounds    world.Bounds
	objective model.Vec2

	waves    []model.WaveDefinition
	factions map[string]*model.Faction

	interWaveDelay float64
	maxWaveWait    float64

	state      phase
	waveIdx    int
	batchIdx   int
	spawned    int     // spawns completed in the current batch
	spawnTimer float64 // counts down to the next spawn
	anchor     model.Vec2
	edge       int

	remaining  int // live hostiles across all started waves
	delayTimer float64
	waitTimer  float64
}

// Config carries the orchestrator's construction parameters.
type Config struct {
	Bounds         world.Bounds
	Objective      model.Vec2
	Waves          []model.WaveDefinition
	Factions       map[string]*model.Faction
	InterWaveDelay float64
	MaxWaveWait    float64
}

// NewOrchestrator creates an orchestrator and subscribes it to hostile
// death events on the bus. The first wave starts after one inter-wave
// delay, giving the external manager a placement window.
func NewOrchestrator(arena *world.Arena, index *world.SpatialIndex, bus *event.Bus, rng *rand.Rand, cfg Config) *Orchestrator {
	o := &Orchestrator{
		arena:          arena,
		index:          index,
		bus:            bus,
		rng:            rng,
		bounds:         cfg.Bounds,
		objective:      cfg.Objective,
		waves:          cfg.Waves,
		factions:       cfg.Factions,
		interWaveDelay: cfg.InterWaveDelay,
		maxWaveWait:    cfg.MaxWaveWait,
		state:          phaseIdle,
		delayTimer:     cfg.InterWaveDelay,
	}
	if len(o.waves) == 0 {
		o.state = phaseDone
	}

	bus.Subscribe(func(ev any) {
		died, ok := ev.(event.Died)
		if !ok || died.Kind != model.KindHostile {
			return
		}
		if o.remaining > 0 {
			o.remaining--
		}
	})
	return o
}

// Tick advances the wave state machine by dt seconds.
func (o *Orchestrator) Tick(dt float64) {
	switch o.state {
	case phaseIdle:
		o.delayTimer -= dt
		if o.delayTimer <= 0 && o.remaining == 0 {
			o.startWave()
		}

	case phaseSpawning:
		o.tickSpawning(dt)

	case phaseDraining:
		if o.remaining == 0 {
			o.bus.Publish(event.WaveCleared{Index: o.waveIdx})
			slog.Info("wave cleared", "wave", o.waveIdx)
			o.advance(false)
			return
		}
		o.waitTimer += dt
		if o.waitTimer >= o.maxWaveWait {
			slog.Warn("wave wait budget exhausted, forcing next wave",
				"wave", o.waveIdx,
				"stragglers", o.remaining)
			o.advance(true)
		}

	case phaseDone:
	}
}

// Done reports whether every wave has been cleared.
func (o *Orchestrator) Done() bool {
	return o.state == phaseDone && o.remaining == 0
}

// Remaining returns the live hostile count across all started waves.
func (o *Orchestrator) Remaining() int { return o.remaining }

// CurrentWave returns the index of the running wave, or the next one
// while idle. After the final wave it stays at len(waves).
func (o *Orchestrator) CurrentWave() int { return o.waveIdx }

func (o *Orchestrator) startWave() {
	o.state = phaseSpawning
	o.batchIdx = 0
	o.spawned = 0
	o.spawnTimer = 0
	o.pickAnchor(o.waves[o.waveIdx].Batches[0])
	o.bus.Publish(event.WaveStarted{Index: o.waveIdx})
	slog.Info("wave started",
		"wave", o.waveIdx,
		"hostiles", o.waves[o.waveIdx].TotalCount())
}

// advance moves past the current wave. A forced advance skips the
// inter-wave delay: the wait budget already covered it.
func (o *Orchestrator) advance(forced bool) {
	o.waveIdx++
	o.waitTimer = 0
	if o.waveIdx >= len(o.waves) {
		o.state = phaseDone
		return
	}
	if forced {
		o.startWave()
		return
	}
	o.state = phaseIdle
	o.delayTimer = o.interWaveDelay
}

func (o *Orchestrator) tickSpawning(dt float64) {
	o.spawnTimer -= dt
	wave := &o.waves[o.waveIdx]

	for o.spawnTimer <= 0 {
		batch := &wave.Batches[o.batchIdx]
		if !o.spawnHostile(batch) {
			// Pool exhausted: hold position and retry next tick.
			o.spawnTimer = 0
			return
		}
		o.spawned++
		o.spawnTimer += batch.SpawnInterval

		if o.spawned >= batch.Count {
			o.batchIdx++
			o.spawned = 0
			if o.batchIdx >= len(wave.Batches) {
				o.state = phaseDraining
				o.waitTimer = 0
				return
			}
			o.pickAnchor(wave.Batches[o.batchIdx])
		}
	}
}

// spawnHostile places one hostile of the batch's faction at its
// formation slot. Returns false when the pool is exhausted.
func (o *Orchestrator) spawnHostile(batch *model.Batch) bool {
	a, ok := o.arena.Spawn()
	if !ok {
		o.bus.Publish(event.SpawnSkipped{Source: "wave", Faction: batch.Faction})
		if IsDebugEnabled() {
			slog.Debug("spawn skipped, pool exhausted",
				"wave", o.waveIdx,
				"faction", batch.Faction)
		}
		return false
	}

	f := o.factions[batch.Faction]
	pos := o.formationPos(batch, o.spawned)
	f.InitHostile(a, pos)
	a.StrafePhase = o.rng.Float64() * 2 * math.Pi
	if o.rng.IntN(2) == 1 {
		a.FlankSign = -1
	}

	o.index.Insert(a.Handle, pos.X, pos.Y)
	o.remaining++
	o.bus.Publish(event.Spawned{Handle: a.Handle, Faction: a.Faction, Kind: a.Kind, Pos: pos})
	return true
}

// pickAnchor rolls a fresh edge anchor for a batch. All of a batch's
// spawns lay out relative to one anchor so formations stay coherent.
func (o *Orchestrator) pickAnchor(batch model.Batch) {
	o.edge = o.rng.IntN(4)
	t := o.rng.Float64()

	// Keep the whole formation footprint inside the edge.
	margin := (float64(batch.Count) * lineSpacing) / 2
	o.anchor = o.edgePoint(o.edge, t, margin)
}

// edgePoint maps (edge, t) to a world-boundary point, insetting by
// margin so formation offsets stay inside the bounds.
func (o *Orchestrator) edgePoint(edge int, t, margin float64) model.Vec2 {
	lerp := func(lo, hi float64) float64 {
		lo += margin
		hi -= margin
		if hi < lo {
			return (lo + hi) / 2
		}
		return lo + t*(hi-lo)
	}
	switch edge {
	case 0: // top
		return model.Vec2{X: lerp(o.bounds.MinX, o.bounds.MaxX), Y: o.bounds.MinY + edgeInset}
	case 1: // bottom
		return model.Vec2{X: lerp(o.bounds.MinX, o.bounds.MaxX), Y: o.bounds.MaxY - edgeInset}
	case 2: // left
		return model.Vec2{X: o.bounds.MinX + edgeInset, Y: lerp(o.bounds.MinY, o.bounds.MaxY)}
	default: // right
		return model.Vec2{X: o.bounds.MaxX - edgeInset, Y: lerp(o.bounds.MinY, o.bounds.MaxY)}
	}
}

// formationPos lays out spawn slot i of a batch around its anchor.
func (o *Orchestrator) formationPos(batch *model.Batch, i int) model.Vec2 {
	along := o.edgeTangent()

	var pos model.Vec2
	switch batch.Formation {
	case model.FormationCluster:
		jitter := along.Scale((o.rng.Float64()*2 - 1) * clusterJitter)
		pos = o.anchor.Add(jitter)

	case model.FormationArc:
		// Slots fan along the edge; the middle bows toward the objective.
		offset := float64(i) - float64(batch.Count-1)/2
		pos = o.anchor.Add(along.Scale(offset * lineSpacing))
		depth := arcDepth * math.Cos(math.Pi*offset/math.Max(float64(batch.Count), 1))
		pos = pos.Add(o.objective.Sub(pos).Normalized().Scale(depth))

	default: // line
		offset := float64(i) - float64(batch.Count-1)/2
		pos = o.anchor.Add(along.Scale(offset * lineSpacing))
	}

	return o.clampToBounds(pos)
}

// edgeTangent returns the unit vector running along the current edge.
func (o *Orchestrator) edgeTangent() model.Vec2 {
	if o.edge <= 1 {
		return model.Vec2{X: 1, Y: 0}
	}
	return model.Vec2{X: 0, Y: 1}
}

func (o *Orchestrator) clampToBounds(p model.Vec2) model.Vec2 {
	p.X = math.Min(math.Max(p.X, o.bounds.MinX+edgeInset), o.bounds.MaxX-edgeInset)
	p.Y = math.Min(math.Max(p.Y, o.bounds.MinY+edgeInset), o.bounds.MaxY-edgeInset)
	return p
}
