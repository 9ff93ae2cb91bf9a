package combat

import (
	"math/rand/v2"

	"github.com/udisondev/bastion/internal/event"
	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/world"
)

// testWorld bundles the shared state combat components operate on.
type testWorld struct {
	arena  *world.Arena
	index  *world.SpatialIndex
	bus    *event.Bus
	events []any
}

func newTestWorld(capacity int) *testWorld {
	tw := &testWorld{
		arena: world.NewArena(capacity),
		index: world.NewSpatialIndex(world.Bounds{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}, 128),
		bus:   event.NewBus(),
	}
	tw.bus.Subscribe(func(ev any) {
		tw.events = append(tw.events, ev)
	})
	return tw
}

func (tw *testWorld) newDamageResolver(spillover bool) *DamageResolver {
	return NewDamageResolver(tw.arena, tw.index, tw.bus, rand.New(rand.NewPCG(1, 0)), spillover)
}

// spawnHostile places a live hostile with the given health and shield.
func (tw *testWorld) spawnHostile(pos model.Vec2, health, shield float64) *model.Agent {
	a, ok := tw.arena.Spawn()
	if !ok {
		panic("test arena exhausted")
	}
	a.Kind = model.KindHostile
	a.Faction = "raider"
	a.Pos = pos
	a.Health = health
	a.MaxHealth = health
	a.Shield = shield
	a.MaxShield = shield
	tw.index.Insert(a.Handle, pos.X, pos.Y)
	return a
}

// spawnAttacker places a stationary attacker with the given weapon.
func (tw *testWorld) spawnAttacker(pos model.Vec2, w *model.WeaponProfile, rng float64) *model.Agent {
	a, ok := tw.arena.Spawn()
	if !ok {
		panic("test arena exhausted")
	}
	a.Kind = model.KindAttacker
	a.Faction = "defense"
	a.Pos = pos
	a.Health = 1
	a.MaxHealth = 1
	a.Weapon = w
	a.Range = rng
	tw.index.Insert(a.Handle, pos.X, pos.Y)
	return a
}

// pulseWeapon is the reference instant weapon used across damage tests.
func pulseWeapon() *model.WeaponProfile {
	return &model.WeaponProfile{
		Name:       "pulse",
		Damage:     12,
		FireRate:   2,
		Range:      200,
		Mode:       model.DeliveryInstant,
		ShieldMult: 3.0,
		HullMult:   0.5,
	}
}

func rocketWeapon() *model.WeaponProfile {
	return &model.WeaponProfile{
		Name:               "rocket",
		Damage:             25,
		FireRate:           1,
		Range:              300,
		Mode:               model.DeliveryProjectile,
		ProjectileSpeed:    100,
		ProjectileLifetime: 2,
		ContactRadius:      10,
		Homing:             true,
		ShieldMult:         1,
		HullMult:           1,
	}
}

// eventsOf collects all recorded events matching type E.
func eventsOf[E any](tw *testWorld) []E {
	var out []E
	for _, ev := range tw.events {
		if e, ok := ev.(E); ok {
			out = append(out, e)
		}
	}
	return out
}
