package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sim holds all runtime settings for the simulation core.
type Sim struct {
	LogLevel string `yaml:"log_level"`

	// Seed drives every random roll in the simulation (status chances,
	// formation jitter). Same seed + same inputs = same run.
	Seed uint64 `yaml:"seed"`

	// TickRate is simulation ticks per second.
	TickRate int `yaml:"tick_rate"`

	// PoolCapacity bounds the number of simultaneously live agents.
	PoolCapacity int `yaml:"pool_capacity"`

	// CellSize is the spatial grid cell edge; should be at least the
	// largest attacker range to bound candidates per query.
	CellSize float64 `yaml:"cell_size"`

	World     World     `yaml:"world"`
	Objective Objective `yaml:"objective"`

	// Spillover enables shield-overflow damage carrying into hull on
	// the depleting hit.
	Spillover bool `yaml:"spillover"`

	InterWaveDelay float64 `yaml:"inter_wave_delay"` // seconds between waves
	MaxWaveWait    float64 `yaml:"max_wave_wait"`    // forced progression ceiling, seconds

	// AIWorkers is the number of parallel behavior workers; 0 picks a
	// value from GOMAXPROCS.
	AIWorkers int `yaml:"ai_workers"`

	GameDataPath string `yaml:"gamedata_path"`

	Database Database `yaml:"database"`
}

// World describes the playable rectangle.
type World struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// Objective is the defended point hostiles seek to destroy.
type Objective struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Health float64 `yaml:"health"`
	Radius float64 `yaml:"radius"`
}

// Database holds optional PostgreSQL parameters for run statistics.
type Database struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSim returns Sim config with sensible defaults.
func DefaultSim() Sim {
	return Sim{
		LogLevel:       "info",
		Seed:           1,
		TickRate:       30,
		PoolCapacity:   4096,
		CellSize:       128,
		World:          World{MinX: 0, MinY: 0, MaxX: 1024, MaxY: 1024},
		Objective:      Objective{X: 512, Y: 512, Health: 1000, Radius: 24},
		Spillover:      true,
		InterWaveDelay: 3,
		MaxWaveWait:    60,
		GameDataPath:   "config/gamedata.yaml",
		Database: Database{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "bastion",
			Password: "bastion",
			DBName:   "bastion",
			SSLMode:  "disable",
		},
	}
}

// LoadSim loads sim config from a YAML file, overlaying defaults.
// If the file doesn't exist, returns defaults.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// validate rejects settings the simulation cannot start with.
func (c *Sim) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.PoolCapacity <= 0 {
		return fmt.Errorf("pool_capacity must be positive, got %d", c.PoolCapacity)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %v", c.CellSize)
	}
	if c.World.MaxX <= c.World.MinX || c.World.MaxY <= c.World.MinY {
		return fmt.Errorf("world bounds are empty: [%v,%v]×[%v,%v]",
			c.World.MinX, c.World.MaxX, c.World.MinY, c.World.MaxY)
	}
	if c.Objective.Health <= 0 {
		return fmt.Errorf("objective health must be positive, got %v", c.Objective.Health)
	}
	if c.Objective.Radius <= 0 {
		return fmt.Errorf("objective radius must be positive, got %v", c.Objective.Radius)
	}
	if c.InterWaveDelay < 0 || c.MaxWaveWait < 0 {
		return fmt.Errorf("wave timers must not be negative")
	}
	if c.AIWorkers < 0 {
		return fmt.Errorf("ai_workers must not be negative, got %d", c.AIWorkers)
	}
	return nil
}
