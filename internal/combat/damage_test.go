package combat

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/bastion/internal/event"
	"github.com/udisondev/bastion/internal/model"
)

func TestDamageResolver_ShieldSpillover(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 50, 10)

	// 12 raw × 3.0 shield mult = 36 ≥ 10 shield: depleted.
	// Spill 26 × 0.5 hull mult = 13 hull damage.
	d.Apply(tgt.Handle, 12, pulseWeapon())

	assert.Equal(t, 0.0, tgt.Shield)
	assert.Equal(t, 37.0, tgt.Health)
}

func TestDamageResolver_SpilloverDisabled(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(false)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 50, 10)
	d.Apply(tgt.Handle, 12, pulseWeapon())

	// The depleting hit stops at the shield.
	assert.Equal(t, 0.0, tgt.Shield)
	assert.Equal(t, 50.0, tgt.Health)
}

func TestDamageResolver_Unshielded(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 50, 0)
	d.Apply(tgt.Handle, 12, pulseWeapon())

	// 12 × 0.5 hull mult = 6.
	assert.Equal(t, 44.0, tgt.Health)
}

func TestDamageResolver_PartialShieldHit(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 50, 100)
	d.Apply(tgt.Handle, 12, pulseWeapon())

	// 36 effective < 100 shield: hull untouched.
	assert.Equal(t, 64.0, tgt.Shield)
	assert.Equal(t, 50.0, tgt.Health)
}

func TestDamageResolver_DeathCleanup(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 1, 0)
	tgt.Reward = 10
	att := tw.spawnAttacker(model.Vec2{X: 50, Y: 100}, pulseWeapon(), 200)
	att.SetTarget(tgt.Handle)
	h := tgt.Handle

	d.Apply(h, 12, pulseWeapon())

	// Handle recycled and index entry gone.
	_, ok := tw.arena.Get(h)
	assert.False(t, ok, "dead handle still live")
	found := false
	tw.index.QueryRadius(100, 100, 1, func(got model.Handle) bool {
		if got == h {
			found = true
		}
		return true
	})
	assert.False(t, found, "dead handle still indexed")

	// Weak reference cleared in the same call.
	assert.False(t, att.TargetValid, "attacker still references dead handle")

	died := eventsOf[event.Died](tw)
	require.Len(t, died, 1)
	assert.Equal(t, event.CauseHull, died[0].Cause)
	assert.Equal(t, "raider", died[0].Faction)

	rewards := eventsOf[event.Reward](tw)
	require.Len(t, rewards, 1)
	assert.Equal(t, int64(10), rewards[0].Amount)
}

func TestDamageResolver_HealthNeverNegative(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 5, 0)
	h := tgt.Handle
	d.Apply(h, 1000, pulseWeapon())

	assert.Equal(t, 0.0, tgt.Health)
	_, ok := tw.arena.Get(h)
	assert.False(t, ok)
}

func TestDamageResolver_StatusRefreshNoStacking(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	w := pulseWeapon()
	w.Status = &model.StatusSpec{Kind: model.StatusBurn, Chance: 1, Duration: 4, Magnitude: 2}

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 500, 0)
	d.Apply(tgt.Handle, 1, w)
	require.Len(t, tgt.Statuses, 1)

	// Second application refreshes in place: last one wins.
	w.Status.Magnitude = 5
	w.Status.Duration = 9
	d.Apply(tgt.Handle, 1, w)
	require.Len(t, tgt.Statuses, 1)
	assert.Equal(t, 5.0, tgt.Statuses[0].Magnitude)
	assert.Equal(t, 9.0, tgt.Statuses[0].Remaining)

	applied := eventsOf[event.StatusApplied](tw)
	assert.Len(t, applied, 2)
}

func TestDamageResolver_StatusChanceRoll(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	w := pulseWeapon()
	w.Status = &model.StatusSpec{Kind: model.StatusBurn, Chance: 0, Duration: 4, Magnitude: 2}

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 500, 0)
	d.Apply(tgt.Handle, 1, w)

	assert.Empty(t, tgt.Statuses, "zero-chance status must never apply")
}

func TestDamageResolver_StatusTickBurn(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 50, 30)
	tgt.ApplyStatus(model.StatusBurn, 2, 4)

	// Burn bypasses the shield entirely.
	d.StatusTick()
	assert.Equal(t, 30.0, tgt.Shield)
	assert.Equal(t, 46.0, tgt.Health)

	// Second tick consumes the remaining duration.
	d.StatusTick()
	assert.Equal(t, 42.0, tgt.Health)
	assert.Empty(t, tgt.Statuses, "expired status still attached")

	// No further damage once expired.
	d.StatusTick()
	assert.Equal(t, 42.0, tgt.Health)
}

func TestDamageResolver_StatusTickSuppressAndRegen(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 50, 100)
	tgt.Shield = 10
	tgt.ShieldRegen = 8

	// Full suppression: no regen while active.
	tgt.ApplyStatus(model.StatusSuppress, 1, 1.0)
	d.StatusTick()
	assert.Equal(t, 10.0, tgt.Shield)

	// Suppression expired: regen resumes.
	d.StatusTick()
	assert.Equal(t, 18.0, tgt.Shield)

	// Regen clamps at max.
	tgt.Shield = 98
	d.StatusTick()
	assert.Equal(t, 100.0, tgt.Shield)
}

func TestDamageResolver_BurnDeathEmitsHullCause(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 3, 0)
	tgt.ApplyStatus(model.StatusBurn, 5, 4)

	d.StatusTick()

	died := eventsOf[event.Died](tw)
	require.Len(t, died, 1)
	assert.Equal(t, event.CauseHull, died[0].Cause)
}

func TestDamageResolver_ApplyToFreedHandleNoOp(t *testing.T) {
	tw := newTestWorld(16)
	d := tw.newDamageResolver(true)

	tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 50, 0)
	h := tgt.Handle
	tw.index.Remove(h)
	tw.arena.Free(h)

	d.Apply(h, 12, pulseWeapon())
	d.ApplyDirect(h, 12)

	assert.Empty(t, eventsOf[event.Died](tw))
}

// Deterministic status rolls: same seed, same application sequence.
func TestDamageResolver_SeededRollsRepeat(t *testing.T) {
	run := func() []bool {
		tw := newTestWorld(64)
		d := NewDamageResolver(tw.arena, tw.index, tw.bus, rand.New(rand.NewPCG(7, 0)), true)

		w := pulseWeapon()
		w.Status = &model.StatusSpec{Kind: model.StatusBurn, Chance: 0.5, Duration: 4, Magnitude: 1}

		var outcomes []bool
		for range 20 {
			tgt := tw.spawnHostile(model.Vec2{X: 100, Y: 100}, 500, 0)
			d.Apply(tgt.Handle, 1, w)
			outcomes = append(outcomes, len(tgt.Statuses) > 0)
			tw.index.Remove(tgt.Handle)
			tw.arena.Free(tgt.Handle)
		}
		return outcomes
	}

	assert.Equal(t, run(), run())
}
