package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// masterSecretEnv overrides the configured master secret so production
// deployments can keep it out of config files.
const masterSecretEnv = "ASHFALL_MASTER_SECRET"

// WorldConfig selects the map: loaded from MapPath when the file exists,
// otherwise generated from Width/Height/Seed.
type WorldConfig struct {
	MapPath string `yaml:"map_path"`
	Width   int32  `yaml:"width"`
	Height  int32  `yaml:"height"`
	Seed    int64  `yaml:"seed"`
}

// MovementConfig tunes the movement validator.
type MovementConfig struct {
	MaxMoveDistance    float64       `yaml:"max_move_distance"` // cells per packet
	MovesPerSecond     int           `yaml:"moves_per_second"`
	BurstSize          int           `yaml:"burst_size"`
	TimestampTolerance time.Duration `yaml:"timestamp_tolerance"`
	DesyncThreshold    float64       `yaml:"desync_threshold"` // cells
}

// SecurityConfig controls session secret derivation.
type SecurityConfig struct {
	MasterSecret string        `yaml:"master_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// PathfindingConfig tunes the A* searcher and its dispatcher.
type PathfindingConfig struct {
	MaxNodesExplored      int     `yaml:"max_nodes_explored"`
	DiagonalMovement      bool    `yaml:"diagonal_movement"`
	CardinalCost          float64 `yaml:"cardinal_cost"`
	DiagonalCost          float64 `yaml:"diagonal_cost"`
	MaxConcurrentSearches int64   `yaml:"max_concurrent_searches"`
}

// Waypoint is one patrol stop. Elevation comes from the grid at spawn time.
type Waypoint struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
}

// SpawnEntry describes one walker to place at startup.
type SpawnEntry struct {
	Name         string        `yaml:"name"`
	Kind         string        `yaml:"kind"` // patrol or escort
	X            int32         `yaml:"x"`
	Y            int32         `yaml:"y"`
	Waypoints    []Waypoint    `yaml:"waypoints"`
	Leader       string        `yaml:"leader"`
	LeaderID     uint32        `yaml:"leader_id"`
	RespawnDelay time.Duration `yaml:"respawn_delay"`
}

// WorldServer holds all configuration for the world server.
type WorldServer struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn or error

	// World map
	World WorldConfig `yaml:"world"`

	// Movement validation
	Movement MovementConfig `yaml:"movement"`

	// Packet authentication
	Security SecurityConfig `yaml:"security"`

	// Pathfinding
	Pathfinding PathfindingConfig `yaml:"pathfinding"`

	// AI
	AITickInterval time.Duration `yaml:"ai_tick_interval"`

	// Database
	Database         DatabaseConfig `yaml:"database"`
	PersistIncidents bool           `yaml:"persist_incidents"`

	// Walkers
	Spawns []SpawnEntry `yaml:"spawns"`
}

// DefaultWorldServer returns WorldServer config with sensible defaults.
func DefaultWorldServer() WorldServer {
	return WorldServer{
		LogLevel: "info",
		World: WorldConfig{
			MapPath: "data/ashfall.map",
			Width:   512,
			Height:  512,
			Seed:    1,
		},
		Movement: MovementConfig{
			MaxMoveDistance:    5.0,
			MovesPerSecond:     5,
			BurstSize:          10,
			TimestampTolerance: 5 * time.Second,
			DesyncThreshold:    3.0,
		},
		Security: SecurityConfig{
			// Development secret; production must set ASHFALL_MASTER_SECRET.
			MasterSecret: "ashfall-dev-secret",
			SessionTTL:   30 * time.Minute,
		},
		Pathfinding: PathfindingConfig{
			MaxNodesExplored:      10_000,
			DiagonalMovement:      true,
			CardinalCost:          1.0,
			DiagonalCost:          math.Sqrt2,
			MaxConcurrentSearches: 64,
		},
		AITickInterval:   1 * time.Second,
		PersistIncidents: false,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "ashfall",
			Password: "ashfall",
			DBName:   "ashfall",
			SSLMode:  "disable",
		},
	}
}

// LoadWorldServer loads world server config from a YAML file.
// If the file doesn't exist, returns defaults. The ASHFALL_MASTER_SECRET
// environment variable overrides the configured master secret either way.
func LoadWorldServer(path string) (WorldServer, error) {
	cfg := DefaultWorldServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *WorldServer) {
	if secret := os.Getenv(masterSecretEnv); secret != "" {
		cfg.Security.MasterSecret = secret
	}
}
