package spawn

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind selects the AI controller a spawned walker gets.
type Kind int

const (
	// KindPatrol walks a closed waypoint loop.
	KindPatrol Kind = iota

	// KindEscort trails another entity.
	KindEscort
)

// String returns the kind name for logging and config parsing.
func (k Kind) String() string {
	switch k {
	case KindPatrol:
		return "patrol"
	case KindEscort:
		return "escort"
	default:
		return "unknown"
	}
}

// ParseKind parses a config kind string.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "patrol":
		return KindPatrol, nil
	case "escort":
		return KindEscort, nil
	default:
		return 0, fmt.Errorf("unknown spawn kind %q", s)
	}
}

// Definition describes one walker to place on the grid.
// X/Y name a grid column; the elevation comes from the grid at spawn time.
type Definition struct {
	Name string
	Kind Kind
	X, Y int32

	// Waypoints is the patrol loop, as grid columns.
	Waypoints [][2]int32

	// Leader names another spawned walker to escort. LeaderID addresses
	// an entity directly (a player, say) and is used when Leader is empty.
	Leader   string
	LeaderID uint32

	// RespawnDelay re-spawns the walker this long after a despawn.
	// Zero disables respawning.
	RespawnDelay time.Duration
}

func (d Definition) validate() error {
	if d.Name == "" {
		return errors.New("definition has no name")
	}

	switch d.Kind {
	case KindPatrol:
		if len(d.Waypoints) == 0 {
			return fmt.Errorf("patrol %q has no waypoints", d.Name)
		}
	case KindEscort:
		if d.Leader == "" && d.LeaderID == 0 {
			return fmt.Errorf("escort %q has no leader", d.Name)
		}
	default:
		return fmt.Errorf("%q has unknown kind %d", d.Name, d.Kind)
	}

	return nil
}

// Source supplies spawn definitions at startup.
type Source interface {
	LoadAll(ctx context.Context) ([]Definition, error)
}

// StaticSource serves a fixed definition list.
type StaticSource []Definition

// LoadAll implements Source.
func (s StaticSource) LoadAll(_ context.Context) ([]Definition, error) {
	return s, nil
}
