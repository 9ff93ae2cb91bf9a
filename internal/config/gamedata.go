package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/bastion/internal/model"
)

// GameData is the raw YAML shape of faction/weapon/wave definitions.
// All validation happens at load time: a bad definition is rejected
// before the simulation starts, never discovered mid-tick.
type GameData struct {
	Factions   []FactionDef   `yaml:"factions"`
	Weapons    []WeaponDef    `yaml:"weapons"`
	Waves      []WaveDef      `yaml:"waves"`
	Placements []PlacementDef `yaml:"placements"`
}

// FactionDef defines a hostile archetype.
type FactionDef struct {
	Name          string  `yaml:"name"`
	MaxHealth     float64 `yaml:"max_health"`
	MaxShield     float64 `yaml:"max_shield"`
	ShieldRegen   float64 `yaml:"shield_regen"`
	Speed         float64 `yaml:"speed"`
	ContactDamage float64 `yaml:"contact_damage"`
	Reward        int64   `yaml:"reward"`
	Behavior      string  `yaml:"behavior"`

	FrenzyThreshold float64 `yaml:"frenzy_threshold"`
	FrenzySpeedMult float64 `yaml:"frenzy_speed_mult"`
	RamDamage       float64 `yaml:"ram_damage"`
}

// WeaponDef defines an attacker weapon profile.
type WeaponDef struct {
	Name     string  `yaml:"name"`
	Damage   float64 `yaml:"damage"`
	FireRate float64 `yaml:"fire_rate"`
	Range    float64 `yaml:"range"`
	Mode     string  `yaml:"mode"`

	ProjectileSpeed    float64 `yaml:"projectile_speed"`
	ProjectileLifetime float64 `yaml:"projectile_lifetime"`
	ContactRadius      float64 `yaml:"contact_radius"`
	Homing             bool    `yaml:"homing"`

	ShieldMult float64 `yaml:"shield_mult"`
	HullMult   float64 `yaml:"hull_mult"`

	Status *StatusDef `yaml:"status"`
}

// StatusDef defines the status effect a weapon may apply.
type StatusDef struct {
	Kind      string  `yaml:"kind"`
	Chance    float64 `yaml:"chance"`
	Duration  float64 `yaml:"duration"`
	Magnitude float64 `yaml:"magnitude"`
}

// WaveDef defines one wave as an ordered batch list.
type WaveDef struct {
	Batches []BatchDef `yaml:"batches"`
}

// BatchDef defines one spawn group inside a wave.
type BatchDef struct {
	Faction       string  `yaml:"faction"`
	Count         int     `yaml:"count"`
	SpawnInterval float64 `yaml:"spawn_interval"`
	Formation     string  `yaml:"formation"`
}

// PlacementDef is an initial attacker placement supplied by the
// external placement manager (the simserver harness reads these from
// config in lieu of a live manager).
type PlacementDef struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Weapon string  `yaml:"weapon"`
	Range  float64 `yaml:"range"` // 0 = weapon's own range
}

// Content is the validated, compiled game data the engine consumes.
type Content struct {
	Factions   map[string]*model.Faction
	Weapons    map[string]*model.WeaponProfile
	Waves      []model.WaveDefinition
	Placements []Placement
}

// Placement is a validated attacker placement.
type Placement struct {
	Pos    model.Vec2
	Weapon string
	Range  float64
}

// LoadGameData reads and validates game data from a YAML file.
func LoadGameData(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game data %s: %w", path, err)
	}

	var raw GameData
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing game data %s: %w", path, err)
	}

	content, err := raw.Build()
	if err != nil {
		return nil, fmt.Errorf("validating game data %s: %w", path, err)
	}
	return content, nil
}

// Build validates raw definitions and compiles them into engine types.
func (g *GameData) Build() (*Content, error) {
	content := &Content{
		Factions: make(map[string]*model.Faction, len(g.Factions)),
		Weapons:  make(map[string]*model.WeaponProfile, len(g.Weapons)),
	}

	for i, def := range g.Factions {
		f, err := def.build()
		if err != nil {
			return nil, fmt.Errorf("faction %d (%s): %w", i, def.Name, err)
		}
		if _, dup := content.Factions[f.Name]; dup {
			return nil, fmt.Errorf("faction %d: duplicate name %q", i, f.Name)
		}
		content.Factions[f.Name] = f
	}

	for i, def := range g.Weapons {
		w, err := def.build()
		if err != nil {
			return nil, fmt.Errorf("weapon %d (%s): %w", i, def.Name, err)
		}
		if _, dup := content.Weapons[w.Name]; dup {
			return nil, fmt.Errorf("weapon %d: duplicate name %q", i, w.Name)
		}
		content.Weapons[w.Name] = w
	}

	for i, def := range g.Waves {
		wave, err := def.build(content.Factions)
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
		content.Waves = append(content.Waves, wave)
	}

	for i, def := range g.Placements {
		weapon, ok := content.Weapons[def.Weapon]
		if !ok {
			return nil, fmt.Errorf("placement %d: unknown weapon %q", i, def.Weapon)
		}
		rng := def.Range
		if rng <= 0 {
			rng = weapon.Range
		}
		content.Placements = append(content.Placements, Placement{
			Pos:    model.Vec2{X: def.X, Y: def.Y},
			Weapon: def.Weapon,
			Range:  rng,
		})
	}

	return content, nil
}

func (d *FactionDef) build() (*model.Faction, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if d.MaxHealth <= 0 {
		return nil, fmt.Errorf("max_health must be positive, got %v", d.MaxHealth)
	}
	if d.MaxShield < 0 || d.ShieldRegen < 0 {
		return nil, fmt.Errorf("shield values must not be negative")
	}
	if d.Speed < 0 {
		return nil, fmt.Errorf("speed must not be negative, got %v", d.Speed)
	}
	if d.ContactDamage < 0 || d.Reward < 0 {
		return nil, fmt.Errorf("contact_damage and reward must not be negative")
	}

	variant, ok := model.ParseBehaviorVariant(d.Behavior)
	if !ok {
		return nil, fmt.Errorf("unknown behavior %q", d.Behavior)
	}

	f := &model.Faction{
		Name:          d.Name,
		MaxHealth:     d.MaxHealth,
		MaxShield:     d.MaxShield,
		ShieldRegen:   d.ShieldRegen,
		Speed:         d.Speed,
		ContactDamage: d.ContactDamage,
		Reward:        d.Reward,
		Variant:       variant,
	}

	if variant == model.VariantKamikaze {
		if d.FrenzyThreshold <= 0 || d.FrenzyThreshold > 1 {
			return nil, fmt.Errorf("frenzy_threshold must be in (0, 1], got %v", d.FrenzyThreshold)
		}
		if d.FrenzySpeedMult < 1 {
			return nil, fmt.Errorf("frenzy_speed_mult must be >= 1, got %v", d.FrenzySpeedMult)
		}
		if d.RamDamage < 0 {
			return nil, fmt.Errorf("ram_damage must not be negative, got %v", d.RamDamage)
		}
		f.FrenzyThreshold = d.FrenzyThreshold
		f.FrenzySpeedMult = d.FrenzySpeedMult
		f.RamDamage = d.RamDamage
	}

	return f, nil
}

func (d *WeaponDef) build() (*model.WeaponProfile, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if d.FireRate <= 0 {
		return nil, fmt.Errorf("fire_rate must be positive, got %v", d.FireRate)
	}
	if d.Damage < 0 {
		return nil, fmt.Errorf("damage must not be negative, got %v", d.Damage)
	}

	var mode model.DeliveryMode
	switch d.Mode {
	case "", "instant":
		mode = model.DeliveryInstant
	case "projectile":
		mode = model.DeliveryProjectile
	default:
		return nil, fmt.Errorf("unknown delivery mode %q", d.Mode)
	}

	w := &model.WeaponProfile{
		Name:       d.Name,
		Damage:     d.Damage,
		FireRate:   d.FireRate,
		Range:      max(d.Range, 0), // negative range means zero reach
		Mode:       mode,
		ShieldMult: d.ShieldMult,
		HullMult:   d.HullMult,
	}
	if w.ShieldMult == 0 {
		w.ShieldMult = 1
	}
	if w.HullMult == 0 {
		w.HullMult = 1
	}

	if mode == model.DeliveryProjectile {
		if d.ProjectileSpeed <= 0 {
			return nil, fmt.Errorf("projectile_speed must be positive, got %v", d.ProjectileSpeed)
		}
		if d.ProjectileLifetime <= 0 {
			return nil, fmt.Errorf("projectile_lifetime must be positive, got %v", d.ProjectileLifetime)
		}
		w.ProjectileSpeed = d.ProjectileSpeed
		w.ProjectileLifetime = d.ProjectileLifetime
		w.ContactRadius = d.ContactRadius
		if w.ContactRadius <= 0 {
			w.ContactRadius = 8
		}
		w.Homing = d.Homing
	}

	if d.Status != nil {
		kind, err := parseStatusKind(d.Status.Kind)
		if err != nil {
			return nil, err
		}
		if d.Status.Chance < 0 || d.Status.Chance > 1 {
			return nil, fmt.Errorf("status chance must be in [0, 1], got %v", d.Status.Chance)
		}
		if d.Status.Duration <= 0 {
			return nil, fmt.Errorf("status duration must be positive, got %v", d.Status.Duration)
		}
		if kind == model.StatusSuppress && (d.Status.Magnitude < 0 || d.Status.Magnitude > 1) {
			return nil, fmt.Errorf("suppress magnitude must be in [0, 1], got %v", d.Status.Magnitude)
		}
		w.Status = &model.StatusSpec{
			Kind:      kind,
			Chance:    d.Status.Chance,
			Duration:  d.Status.Duration,
			Magnitude: d.Status.Magnitude,
		}
	}

	return w, nil
}

func (d *WaveDef) build(factions map[string]*model.Faction) (model.WaveDefinition, error) {
	var wave model.WaveDefinition
	if len(d.Batches) == 0 {
		return wave, fmt.Errorf("wave has no batches")
	}

	for i, b := range d.Batches {
		if b.Count <= 0 {
			return wave, fmt.Errorf("batch %d: count must be positive, got %d", i, b.Count)
		}
		if b.SpawnInterval < 0 {
			return wave, fmt.Errorf("batch %d: spawn_interval must not be negative, got %v", i, b.SpawnInterval)
		}
		if _, ok := factions[b.Faction]; !ok {
			return wave, fmt.Errorf("batch %d: unknown faction %q", i, b.Faction)
		}
		formation, ok := model.ParseFormationHint(b.Formation)
		if !ok {
			return wave, fmt.Errorf("batch %d: unknown formation %q", i, b.Formation)
		}
		wave.Batches = append(wave.Batches, model.Batch{
			Faction:       b.Faction,
			Count:         b.Count,
			SpawnInterval: b.SpawnInterval,
			Formation:     formation,
		})
	}
	return wave, nil
}

func parseStatusKind(s string) (model.StatusKind, error) {
	switch s {
	case "burn":
		return model.StatusBurn, nil
	case "suppress":
		return model.StatusSuppress, nil
	default:
		return 0, fmt.Errorf("unknown status kind %q", s)
	}
}
