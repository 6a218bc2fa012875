package spawn

import (
	"context"
	"fmt"

	"github.com/hollowmere/ashfall/internal/config"
)

// ConfigSource implements Source over the spawn list of the server config.
type ConfigSource struct {
	entries []config.SpawnEntry
}

// NewConfigSource creates a ConfigSource adapter.
func NewConfigSource(entries []config.SpawnEntry) *ConfigSource {
	return &ConfigSource{entries: entries}
}

// LoadAll converts config spawn entries into definitions.
func (s *ConfigSource) LoadAll(_ context.Context) ([]Definition, error) {
	defs := make([]Definition, 0, len(s.entries))

	for i, entry := range s.entries {
		kind, err := ParseKind(entry.Kind)
		if err != nil {
			return nil, fmt.Errorf("spawn entry %d (%q): %w", i, entry.Name, err)
		}

		waypoints := make([][2]int32, 0, len(entry.Waypoints))
		for _, wp := range entry.Waypoints {
			waypoints = append(waypoints, [2]int32{wp.X, wp.Y})
		}

		defs = append(defs, Definition{
			Name:         entry.Name,
			Kind:         kind,
			X:            entry.X,
			Y:            entry.Y,
			Waypoints:    waypoints,
			Leader:       entry.Leader,
			LeaderID:     entry.LeaderID,
			RespawnDelay: entry.RespawnDelay,
		})
	}

	return defs, nil
}
