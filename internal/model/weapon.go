package model

// DeliveryMode selects how a weapon applies its damage.
type DeliveryMode int32

const (
	// DeliveryInstant applies damage the moment the weapon fires.
	DeliveryInstant DeliveryMode = iota
	// DeliveryProjectile spawns a projectile agent that resolves on contact.
	DeliveryProjectile
)

// String returns human-readable delivery mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliveryInstant:
		return "instant"
	case DeliveryProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// StatusKind identifies a status effect carried by weapon hits.
type StatusKind int32

const (
	// StatusBurn deals damage over time, applied directly to hull.
	StatusBurn StatusKind = iota
	// StatusSuppress scales down the target's passive shield regeneration.
	StatusSuppress
)

// String returns human-readable status kind name.
func (k StatusKind) String() string {
	switch k {
	case StatusBurn:
		return "burn"
	case StatusSuppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// StatusSpec describes the status effect a weapon may apply on hit.
type StatusSpec struct {
	Kind StatusKind
	// Chance of application per hit, [0, 1].
	Chance float64
	// Duration in simulation seconds.
	Duration float64
	// Magnitude: hull damage per status tick for StatusBurn,
	// regen reduction fraction [0, 1] for StatusSuppress.
	Magnitude float64
}

// WeaponProfile holds the immutable combat parameters of an attacker weapon.
// Projectile agents carry a copy so the profile survives attacker death.
type WeaponProfile struct {
	Name     string
	Damage   float64
	FireRate float64 // shots per second, > 0
	Range    float64
	Mode     DeliveryMode

	// Projectile parameters (ignored for DeliveryInstant).
	ProjectileSpeed    float64
	ProjectileLifetime float64 // seconds before the projectile expires
	ContactRadius      float64
	Homing             bool

	ShieldMult float64
	HullMult   float64

	// Status is nil when the weapon applies no status effect.
	Status *StatusSpec
}

// CooldownAfterShot returns seconds until the weapon may fire again.
func (w *WeaponProfile) CooldownAfterShot() float64 {
	return 1.0 / w.FireRate
}
