package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/hollowmere/ashfall/internal/ai"
	"github.com/hollowmere/ashfall/internal/config"
	"github.com/hollowmere/ashfall/internal/db"
	"github.com/hollowmere/ashfall/internal/game/nav"
	"github.com/hollowmere/ashfall/internal/gameserver"
	"github.com/hollowmere/ashfall/internal/security"
	"github.com/hollowmere/ashfall/internal/spawn"
	"github.com/hollowmere/ashfall/internal/telemetry"
	"github.com/hollowmere/ashfall/internal/world"
)

const ConfigPath = "config/worldserver.yaml"

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
	if p := os.Getenv("ASHFALL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadWorldServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure slog based on config.LogLevel
	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Enable AI debug logging if log level is debug
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("ashfall world server starting", "log_level", cfg.LogLevel)

	grid, err := loadGrid(cfg.World)
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}
	slog.Info("world grid ready",
		"width", grid.Width(),
		"height", grid.Height())

	// Movement incidents always reach the log; the database sink is added
	// on top when persistence is enabled.
	sink := telemetry.Sink(telemetry.NewLogSink(slog.Default()))

	var storeSink *telemetry.StoreSink
	if cfg.PersistIncidents {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		// Physical plausibility rejections are too noisy to persist; only
		// security-grade events reach postgres.
		storeSink = telemetry.NewStoreSink(db.NewIncidentRepository(database.Pool()), 1024)
		persisted := telemetry.NewFilterSink(storeSink,
			telemetry.EventAuthFailed,
			telemetry.EventRateLimited,
			telemetry.EventPositionDesync,
			telemetry.EventServerError)
		sink = telemetry.MultiSink{sink, persisted}
	}

	// Security manager derives per-session movement secrets from the
	// master secret.
	sec, err := security.NewManager([]byte(cfg.Security.MasterSecret))
	if err != nil {
		return fmt.Errorf("initializing security manager: %w", err)
	}

	validator := gameserver.NewMovementValidator(grid, sec, gameserver.ValidatorOptions{
		TimestampTolerance: cfg.Movement.TimestampTolerance,
		MovesPerSecond:     cfg.Movement.MovesPerSecond,
		BurstSize:          cfg.Movement.BurstSize,
		MaxMoveDistance:    cfg.Movement.MaxMoveDistance,
		DesyncThreshold:    cfg.Movement.DesyncThreshold,
		Sink:               sink,
	})
	gameserver.SetDefaultValidator(validator)
	slog.Info("movement validator initialized",
		"max_move_distance", cfg.Movement.MaxMoveDistance,
		"moves_per_second", cfg.Movement.MovesPerSecond,
		"burst_size", cfg.Movement.BurstSize)

	sessions := gameserver.NewSessionManager(sec, cfg.Security.SessionTTL)
	sessions.OnClose = validator.ForgetEntity

	// Pathfinding
	finder := nav.NewPathFinder(grid)
	finder.SetMaxNodesExplored(cfg.Pathfinding.MaxNodesExplored)
	finder.SetDiagonalMovement(cfg.Pathfinding.DiagonalMovement)
	finder.SetMovementCosts(cfg.Pathfinding.CardinalCost, cfg.Pathfinding.DiagonalCost)
	nav.SetDefaultPathFinder(finder)
	dispatcher := nav.NewDispatcher(finder, cfg.Pathfinding.MaxConcurrentSearches)

	// AI and walkers
	aiMgr := ai.NewTickManager(cfg.AITickInterval)
	spawnMgr := spawn.NewManager(grid, dispatcher, aiMgr)
	respawns := spawn.NewRespawnQueue(spawnMgr)
	spawnMgr.AttachRespawnQueue(respawns)

	var src spawn.Source
	if len(cfg.Spawns) > 0 {
		src = spawn.NewConfigSource(cfg.Spawns)
	} else {
		src = spawn.StaticSource(spawn.DemoDefinitions())
		slog.Info("no spawns configured, using demo walkers")
	}
	if err := spawnMgr.LoadDefinitions(ctx, src); err != nil {
		return fmt.Errorf("loading spawn definitions: %w", err)
	}
	if err := spawnMgr.SpawnAll(ctx); err != nil {
		slog.Warn("failed to spawn all walkers", "error", err)
	}
	slog.Info("spawn system initialized", "active_walkers", spawnMgr.ActiveCount())

	// Run the background managers in parallel
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting AI tick manager", "interval", cfg.AITickInterval)
		if err := aiMgr.Start(gctx); err != nil {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting respawn queue")
		if err := respawns.Start(gctx); err != nil {
			return fmt.Errorf("respawn queue: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting session sweeper", "ttl", cfg.Security.SessionTTL)
		if err := sessions.Run(gctx); err != nil {
			return fmt.Errorf("session sweeper: %w", err)
		}
		return nil
	})

	if storeSink != nil {
		g.Go(func() error {
			slog.Info("starting incident store sink")
			if err := storeSink.Run(gctx); err != nil {
				return fmt.Errorf("incident store sink: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// loadGrid reads the configured map file, generating a map from the seed
// when the file is absent.
func loadGrid(cfg config.WorldConfig) (*world.Grid, error) {
	md, err := world.ReadMap(cfg.MapPath)
	if err == nil {
		slog.Info("map loaded", "path", cfg.MapPath)
		return world.NewGridFromMap(md), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading map %s: %w", cfg.MapPath, err)
	}

	slog.Info("map file missing, generating",
		"path", cfg.MapPath,
		"seed", cfg.Seed)
	md = world.Generate(world.DefaultGenConfig(cfg.Width, cfg.Height, cfg.Seed))
	return world.NewGridFromMap(md), nil
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
