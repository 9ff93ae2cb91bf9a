package event

import "github.com/udisondev/bastion/internal/model"

// Death causes carried on Died events.
const (
	CauseHull    = "hull"    // hull destroyed by weapon or status damage
	CauseRam     = "ram"     // frenzied kamikaze reached the objective
	CauseBreach  = "breach"  // hostile reached the objective on contact
	CauseContact = "contact" // projectile resolved on contact with a hostile
	CauseExpired = "expired" // projectile lifetime budget ran out
	CauseBounds  = "bounds"  // agent left the world rectangle
)

// Spawned is emitted when a new agent enters the world.
type Spawned struct {
	Handle  model.Handle
	Faction string
	Kind    model.AgentKind
	Pos     model.Vec2
}

// Fired is emitted when an attacker discharges its weapon.
// Presentation collaborators use it for muzzle flashes and audio.
type Fired struct {
	Attacker model.Handle
	Target   model.Handle
	Weapon   string
}

// StatusApplied is emitted when a status effect attaches or refreshes.
type StatusApplied struct {
	Target   model.Handle
	Kind     model.StatusKind
	Duration float64
}

// Died is emitted when an agent is destroyed, in the same tick its
// handle is recycled.
type Died struct {
	Handle  model.Handle
	Faction string
	Kind    model.AgentKind
	Cause   string
	Pos     model.Vec2
}

// Reward is emitted alongside a hostile death for the external economy
// collaborator. The core never touches currency balances itself.
type Reward struct {
	Faction string
	Amount  int64
}

// WaveStarted is emitted when a wave begins spawning.
type WaveStarted struct {
	Index int
}

// WaveCleared is emitted when the last hostile of a wave dies.
type WaveCleared struct {
	Index int
}

// SpawnSkipped is the back-pressure signal: a spawn request found the
// entity pool exhausted and was skipped, to be retried on a later tick.
type SpawnSkipped struct {
	Source  string // "wave", "projectile" or "placement"
	Faction string
}

// ObjectiveDamaged is emitted when the defended objective takes
// ram/collision damage.
type ObjectiveDamaged struct {
	Attacker model.Handle
	Amount   float64
	Health   float64
}
