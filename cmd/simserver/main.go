package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/bastion/internal/ai"
	"github.com/udisondev/bastion/internal/combat"
	"github.com/udisondev/bastion/internal/config"
	"github.com/udisondev/bastion/internal/db"
	"github.com/udisondev/bastion/internal/event"
	"github.com/udisondev/bastion/internal/model"
	"github.com/udisondev/bastion/internal/sim"
	"github.com/udisondev/bastion/internal/wave"
)

const ConfigPath = "config/simserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("BASTION_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	debug := logLevel == slog.LevelDebug
	ai.EnableDebugLogging(debug)
	combat.EnableDebugLogging(debug)
	wave.EnableDebugLogging(debug)

	slog.Info("bastion simserver starting",
		"log_level", cfg.LogLevel,
		"seed", cfg.Seed,
		"tick_rate", cfg.TickRate)

	content, err := config.LoadGameData(cfg.GameDataPath)
	if err != nil {
		return fmt.Errorf("loading game data: %w", err)
	}
	slog.Info("game data loaded",
		"factions", len(content.Factions),
		"weapons", len(content.Weapons),
		"waves", len(content.Waves),
		"placements", len(content.Placements))

	// Run statistics persistence is optional: the simulation itself
	// never blocks on I/O.
	var runs *db.RunRepository
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		runs = db.NewRunRepository(database)
		slog.Info("database connected, migrations applied")
	}

	bus := event.NewBus()
	waveStats := newWaveStatsCollector(bus)
	engine := sim.NewEngine(cfg, content, bus)
	waveStats.engine = engine

	bus.Subscribe(func(ev any) {
		switch v := ev.(type) {
		case event.ObjectiveDamaged:
			slog.Warn("objective damaged", "amount", v.Amount, "health", v.Health)
		case event.SpawnSkipped:
			slog.Warn("spawn skipped, pool exhausted", "source", v.Source, "faction", v.Faction)
		}
	})

	for _, p := range content.Placements {
		if _, ok := engine.PlaceAttacker(p.Pos, content.Weapons[p.Weapon], p.Range); !ok {
			return fmt.Errorf("placing attacker %q at (%v, %v): pool exhausted", p.Weapon, p.Pos.X, p.Pos.Y)
		}
	}
	slog.Info("attackers placed", "count", len(content.Placements))

	startedAt := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dt := 1.0 / float64(cfg.TickRate)
		ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				engine.Tick(dt)
				if engine.Finished() {
					return nil
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if engine.Finished() {
					return nil
				}
				slog.Info("simulation progress",
					"sim_time", fmt.Sprintf("%.1fs", engine.SimTime()),
					"wave", engine.CurrentWave(),
					"live_agents", engine.LiveAgents(),
					"objective_health", engine.ObjectiveHealth())
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run loop: %w", err)
	}

	st := engine.Stats()
	slog.Info("run finished",
		"victory", engine.Victory(),
		"sim_time", fmt.Sprintf("%.1fs", engine.SimTime()),
		"waves_cleared", st.WavesCleared,
		"hostiles_destroyed", st.HostilesDestroyed,
		"reward_earned", st.RewardEarned,
		"objective_health", engine.ObjectiveHealth())

	if runs != nil {
		rec := db.RunRecord{
			Seed:              cfg.Seed,
			StartedAt:         startedAt,
			FinishedAt:        time.Now(),
			SimSeconds:        engine.SimTime(),
			Victory:           engine.Victory(),
			WavesCleared:      st.WavesCleared,
			HostilesDestroyed: st.HostilesDestroyed,
			RewardEarned:      st.RewardEarned,
			ObjectiveDamage:   st.ObjectiveDamage,
			ObjectiveHealth:   engine.ObjectiveHealth(),
			Waves:             waveStats.records(),
		}
		// The run context may already be cancelled on SIGINT; the save
		// still deserves a short window of its own.
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		id, err := runs.SaveRun(saveCtx, rec)
		if err != nil {
			return fmt.Errorf("saving run statistics: %w", err)
		}
		slog.Info("run statistics saved", "run_id", id)
	}

	return nil
}

// waveStatsCollector builds the per-wave breakdown for the run
// repository from bus events.
type waveStatsCollector struct {
	engine  *sim.Engine
	current int
	waves   map[int]*db.WaveRecord
}

func newWaveStatsCollector(bus *event.Bus) *waveStatsCollector {
	c := &waveStatsCollector{waves: make(map[int]*db.WaveRecord)}
	bus.Subscribe(func(ev any) {
		switch v := ev.(type) {
		case event.WaveStarted:
			c.current = v.Index
			c.waves[v.Index] = &db.WaveRecord{Index: v.Index}
		case event.Spawned:
			if v.Kind == model.KindHostile {
				if w := c.waves[c.current]; w != nil {
					w.HostilesSpawned++
				}
			}
		case event.Died:
			if v.Kind == model.KindHostile && v.Cause == event.CauseHull {
				if w := c.waves[c.current]; w != nil {
					w.HostilesDestroyed++
				}
			}
		case event.WaveCleared:
			if w := c.waves[v.Index]; w != nil && c.engine != nil {
				t := c.engine.SimTime()
				w.ClearedAt = &t
			}
		}
	})
	return c
}

// records returns wave rows ordered by index.
func (c *waveStatsCollector) records() []db.WaveRecord {
	out := make([]db.WaveRecord, 0, len(c.waves))
	for i := 0; i < len(c.waves); i++ {
		if w, ok := c.waves[i]; ok {
			out = append(out, *w)
		}
	}
	return out
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
