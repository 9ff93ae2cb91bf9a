package model

// Handle is a recycled integer identifier for an agent.
// Handles are owned by the entity pool: a live handle is never issued
// twice until explicitly freed.
type Handle int32

// InvalidHandle marks an unset handle reference.
const InvalidHandle Handle = -1

// AgentKind classifies a simulated entity.
type AgentKind int32

const (
	// KindHostile is a wave-spawned enemy seeking the objective.
	KindHostile AgentKind = iota
	// KindAttacker is a stationary weapon platform placed by the external manager.
	KindAttacker
	// KindProjectile is an in-flight shot carrying a weapon profile copy.
	KindProjectile
)

// String returns human-readable agent kind name.
func (k AgentKind) String() string {
	switch k {
	case KindHostile:
		return "hostile"
	case KindAttacker:
		return "attacker"
	case KindProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// BehaviorVariant selects a hostile movement behavior.
// The set is closed and dispatched by value on the per-tick hot path.
type BehaviorVariant int32

const (
	VariantDirect BehaviorVariant = iota
	VariantStrafe
	VariantFlank
	VariantSwarm
	VariantHunter
	VariantKamikaze
)

// String returns human-readable behavior variant name.
func (v BehaviorVariant) String() string {
	switch v {
	case VariantDirect:
		return "direct"
	case VariantStrafe:
		return "strafe"
	case VariantFlank:
		return "flank"
	case VariantSwarm:
		return "swarm"
	case VariantHunter:
		return "hunter"
	case VariantKamikaze:
		return "kamikaze"
	default:
		return "unknown"
	}
}

// ParseBehaviorVariant maps a config string to a BehaviorVariant.
// Returns false for unknown names.
func ParseBehaviorVariant(s string) (BehaviorVariant, bool) {
	switch s {
	case "direct":
		return VariantDirect, true
	case "strafe":
		return VariantStrafe, true
	case "flank":
		return VariantFlank, true
	case "swarm":
		return VariantSwarm, true
	case "hunter":
		return VariantHunter, true
	case "kamikaze":
		return VariantKamikaze, true
	default:
		return 0, false
	}
}

// StatusEffect is an active status record on an agent.
// One record per kind: re-application resets Remaining and overwrites
// Magnitude (last application wins, no stacking).
type StatusEffect struct {
	Kind      StatusKind
	Remaining float64
	Magnitude float64
}

// Agent is one arena slot: hostile, attacker, or projectile.
// Slots are recycled; Alive distinguishes a live agent from a freed slot.
// All mutation happens in the serialized commit phase of a tick.
type Agent struct {
	Handle Handle
	Alive  bool
	Kind   AgentKind

	Faction string
	Pos     Vec2
	Vel     Vec2

	Health    float64
	MaxHealth float64
	Shield    float64
	MaxShield float64
	// ShieldRegen is passive shield points per simulation second.
	ShieldRegen float64

	Speed         float64
	ContactDamage float64
	Reward        int64

	Variant BehaviorVariant
	// Frenzied is the one-way kamikaze escalation latch.
	Frenzied        bool
	FrenzyThreshold float64
	FrenzySpeedMult float64
	RamDamage       float64

	// Target is a weak reference: never dereference without TargetValid.
	Target      Handle
	TargetValid bool

	Cooldown float64
	Range    float64
	// Weapon is set for attackers and projectiles (projectiles hold a copy).
	Weapon *WeaponProfile

	// Lifetime is the remaining flight budget of a projectile, seconds.
	Lifetime float64
	Homing   bool

	Statuses []StatusEffect

	// StrafePhase offsets the lateral oscillation so strafers desynchronize.
	StrafePhase float64
	// FlankSign picks the flanking side, -1 or +1.
	FlankSign float64
}

// Reset clears a recycled slot before reuse, keeping the backing
// statuses slice to avoid reallocation.
func (a *Agent) Reset(h Handle) {
	statuses := a.Statuses[:0]
	*a = Agent{
		Handle:    h,
		Target:    InvalidHandle,
		Statuses:  statuses,
		FlankSign: 1,
	}
}

// HealthRatio returns current/max health, 0 for a lifeless record.
func (a *Agent) HealthRatio() float64 {
	if a.MaxHealth <= 0 {
		return 0
	}
	return a.Health / a.MaxHealth
}

// ClearTarget drops the weak target reference.
func (a *Agent) ClearTarget() {
	a.Target = InvalidHandle
	a.TargetValid = false
}

// SetTarget points the weak target reference at h.
func (a *Agent) SetTarget(h Handle) {
	a.Target = h
	a.TargetValid = true
}

// FindStatus returns the active status record of the given kind, or nil.
func (a *Agent) FindStatus(kind StatusKind) *StatusEffect {
	for i := range a.Statuses {
		if a.Statuses[i].Kind == kind {
			return &a.Statuses[i]
		}
	}
	return nil
}

// ApplyStatus attaches or refreshes a status record.
// Refresh resets remaining duration and overwrites magnitude.
func (a *Agent) ApplyStatus(kind StatusKind, duration, magnitude float64) {
	if st := a.FindStatus(kind); st != nil {
		st.Remaining = duration
		st.Magnitude = magnitude
		return
	}
	a.Statuses = append(a.Statuses, StatusEffect{Kind: kind, Remaining: duration, Magnitude: magnitude})
}
