package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/world"
)

type aiWorld struct {
	arena *world.Arena
	index *world.SpatialIndex
}

func newAIWorld(capacity int) *aiWorld {
	return &aiWorld{
		arena: world.NewArena(capacity),
		index: world.NewSpatialIndex(world.Bounds{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}, 128),
	}
}

func (w *aiWorld) spawnHostile(pos model.Vec2, variant model.BehaviorVariant, speed float64) *model.Agent {
	a, ok := w.arena.Spawn()
	if !ok {
		panic("test arena exhausted")
	}
	a.Kind = model.KindHostile
	a.Pos = pos
	a.Speed = speed
	a.Variant = variant
	a.Health = 100
	a.MaxHealth = 100
	w.index.Insert(a.Handle, pos.X, pos.Y)
	return a
}

func (w *aiWorld) spawnAttacker(pos model.Vec2) *model.Agent {
	a, ok := w.arena.Spawn()
	if !ok {
		panic("test arena exhausted")
	}
	a.Kind = model.KindAttacker
	a.Pos = pos
	w.index.Insert(a.Handle, pos.X, pos.Y)
	return a
}

var objective = model.Vec2{X: 500, Y: 500}

func TestEngine_DirectHeadsForObjective(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	h := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantDirect, 40)

	intents := e.ComputeIntents(0)
	require.Len(t, intents, 1)
	assert.Equal(t, h.Handle, intents[0].Handle)
	assert.InDelta(t, 40.0, intents[0].Velocity.X, 1e-9)
	assert.InDelta(t, 0.0, intents[0].Velocity.Y, 1e-9)
}

func TestEngine_OnlyHostilesGetIntents(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	w.spawnAttacker(model.Vec2{X: 200, Y: 200})
	h := w.spawnHostile(model.Vec2{X: 100, Y: 100}, model.VariantDirect, 40)

	intents := e.ComputeIntents(0)
	require.Len(t, intents, 1)
	assert.Equal(t, h.Handle, intents[0].Handle)
}

func TestEngine_StrafeOscillates(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	h := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantStrafe, 40)

	a := e.ComputeIntents(0.3)[0].Velocity
	b := e.ComputeIntents(1.1)[0].Velocity

	assert.NotEqual(t, a, b, "strafe heading must vary over time")
	assert.InDelta(t, 40.0, a.Len(), 1e-9, "steering must not exceed configured speed")
	assert.InDelta(t, 40.0, b.Len(), 1e-9)
	_ = h
}

func TestEngine_StrafePhaseDesynchronizes(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	a := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantStrafe, 40)
	b := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantStrafe, 40)
	a.StrafePhase = 0
	b.StrafePhase = 2.5

	intents := e.ComputeIntents(0.3)
	require.Len(t, intents, 2)
	assert.NotEqual(t, intents[0].Velocity, intents[1].Velocity)
}

func TestEngine_FlankApproachesFromSide(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	far := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantFlank, 40)
	farVel := e.ComputeIntents(0)[0].Velocity
	assert.NotEqual(t, 0.0, farVel.Y, "distant flanker must not approach head-on")

	// Inside close range the flanker commits straight at the objective.
	far.Pos = model.Vec2{X: 450, Y: 500}
	w.index.Move(far.Handle, 100, 500, 450, 500)
	closeVel := e.ComputeIntents(0)[0].Velocity
	assert.InDelta(t, 40.0, closeVel.X, 1e-9)
	assert.InDelta(t, 0.0, closeVel.Y, 1e-9)
}

func TestEngine_FlankSignPicksSide(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	a := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantFlank, 40)
	b := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantFlank, 40)
	a.FlankSign = 1
	b.FlankSign = -1

	intents := e.ComputeIntents(0)
	require.Len(t, intents, 2)
	assert.InDelta(t, intents[0].Velocity.Y, -intents[1].Velocity.Y, 1e-9,
		"opposite flank signs must mirror the lateral component")
}

func TestEngine_SwarmSeparates(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	a := w.spawnHostile(model.Vec2{X: 100, Y: 495}, model.VariantSwarm, 40)
	b := w.spawnHostile(model.Vec2{X: 100, Y: 505}, model.VariantSwarm, 40)

	intents := e.ComputeIntents(0)
	require.Len(t, intents, 2)
	assert.Less(t, intents[0].Velocity.Y, 0.0, "upper swarmer must push away from its neighbor")
	assert.Greater(t, intents[1].Velocity.Y, 0.0, "lower swarmer must push away from its neighbor")
	_, _ = a, b
}

func TestEngine_SwarmAloneFliesStraight(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantSwarm, 40)

	v := e.ComputeIntents(0)[0].Velocity
	assert.InDelta(t, 40.0, v.X, 1e-9)
	assert.InDelta(t, 0.0, v.Y, 1e-9)
}

func TestEngine_HunterSeeksNearestAttacker(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	h := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantHunter, 40)
	w.spawnAttacker(model.Vec2{X: 300, Y: 500})
	w.spawnAttacker(model.Vec2{X: 100, Y: 300})

	v := e.ComputeIntents(0)[0].Velocity
	// Both platforms sit 200 away; the lower handle (first spawned) wins.
	assert.InDelta(t, 40.0, v.X, 1e-9)
	assert.InDelta(t, 0.0, v.Y, 1e-9)
	_ = h
}

func TestEngine_HunterFallsBackToObjective(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantHunter, 40)

	v := e.ComputeIntents(0)[0].Velocity
	assert.InDelta(t, 40.0, v.X, 1e-9)
	assert.InDelta(t, 0.0, v.Y, 1e-9)
}

func TestEngine_KamikazeFrenzyLatch(t *testing.T) {
	w := newAIWorld(16)
	e := NewEngine(w.arena, w.index, objective, 1)

	k := w.spawnHostile(model.Vec2{X: 100, Y: 500}, model.VariantKamikaze, 40)
	k.MaxHealth = 60
	k.FrenzyThreshold = 0.15
	k.FrenzySpeedMult = 2

	// Above the threshold: 10/60 > 0.15.
	k.Health = 10
	in := e.ComputeIntents(0)[0]
	assert.False(t, in.EnterFrenzy)
	assert.InDelta(t, 40.0, in.Velocity.Len(), 1e-9)

	// At the threshold: 9/60 == 0.15 escalates.
	k.Health = 9
	in = e.ComputeIntents(0)[0]
	assert.True(t, in.EnterFrenzy)
	assert.InDelta(t, 80.0, in.Velocity.Len(), 1e-9)

	// Committed latch survives healing above the threshold.
	k.Frenzied = true
	k.Health = 30
	in = e.ComputeIntents(0)[0]
	assert.False(t, in.EnterFrenzy, "latch already set, no repeat escalation")
	assert.InDelta(t, 80.0, in.Velocity.Len(), 1e-9, "frenzy speed is permanent")
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	build := func(workers int) []Intent {
		w := newAIWorld(256)
		for i := range 100 {
			variant := model.BehaviorVariant(i % 6)
			w.spawnHostile(model.Vec2{X: float64(10 + i*7), Y: float64(20 + i*5)}, variant, 40)
		}
		w.spawnAttacker(model.Vec2{X: 400, Y: 400})

		e := NewEngine(w.arena, w.index, objective, workers)
		out := e.ComputeIntents(1.5)
		cp := make([]Intent, len(out))
		copy(cp, out)
		return cp
	}

	assert.Equal(t, build(1), build(4), "worker count must not change steering output")
}

func BenchmarkEngine_ComputeIntents(b *testing.B) {
	w := newAIWorld(4096)
	for i := range 2000 {
		variant := model.BehaviorVariant(i % 6)
		w.spawnHostile(model.Vec2{X: float64(i % 900), Y: float64((i * 13) % 900)}, variant, 40)
	}
	e := NewEngine(w.arena, w.index, objective, 0)

	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		e.ComputeIntents(float64(i) * 0.033)
	}
}
