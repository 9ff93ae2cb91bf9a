package model

// Faction is a validated hostile archetype loaded from game data.
// Stats are copied onto agents at spawn so a live agent never reads
// back into shared definition state.
type Faction struct {
	Name          string
	MaxHealth     float64
	MaxShield     float64
	ShieldRegen   float64
	Speed         float64
	ContactDamage float64
	Reward        int64
	Variant       BehaviorVariant

	// Kamikaze parameters, zero for other variants.
	FrenzyThreshold float64
	FrenzySpeedMult float64
	RamDamage       float64
}

// InitHostile fills a fresh arena slot with this faction's stats.
func (f *Faction) InitHostile(a *Agent, pos Vec2) {
	a.Kind = KindHostile
	a.Faction = f.Name
	a.Pos = pos
	a.Health = f.MaxHealth
	a.MaxHealth = f.MaxHealth
	a.Shield = f.MaxShield
	a.MaxShield = f.MaxShield
	a.ShieldRegen = f.ShieldRegen
	a.Speed = f.Speed
	a.ContactDamage = f.ContactDamage
	a.Reward = f.Reward
	a.Variant = f.Variant
	a.FrenzyThreshold = f.FrenzyThreshold
	a.FrenzySpeedMult = f.FrenzySpeedMult
	a.RamDamage = f.RamDamage
}
