package model

import "sync"

// Entity is the capability contract the movement core needs from anything
// that moves: players, monsters, summons. Implementations must be safe for
// concurrent use — the validator and pathfinder may query capabilities from
// multiple goroutines.
type Entity interface {
	// EntityID returns the world-unique object ID.
	EntityID() uint32

	// CanTraverse reports whether the entity may stand on the given terrain.
	CanTraverse(t TerrainType) bool

	// CanPassThrough reports whether the entity ignores entity/entity
	// collision (ghost-mode GMs, projectiles, some summons).
	CanPassThrough() bool

	// MaxMovementDistance returns the per-entity displacement cap for a
	// single movement packet. Zero means "use the validator default".
	MaxMovementDistance() float64
}

// Actor is the concrete Entity used for server-driven NPCs and in tests.
// Capabilities are fixed at construction; only the tracked position mutates.
type Actor struct {
	id          uint32
	name        string
	terrain     TerrainMask
	passThrough bool
	maxMove     float64

	mu  sync.RWMutex
	pos Position
}

// ActorOption configures an Actor at construction.
type ActorOption func(*Actor)

// WithTerrainMask sets the traversable-terrain mask.
func WithTerrainMask(m TerrainMask) ActorOption {
	return func(a *Actor) { a.terrain = m }
}

// WithPassThrough marks the actor as ignoring entity collision.
func WithPassThrough() ActorOption {
	return func(a *Actor) { a.passThrough = true }
}

// WithMaxMovementDistance overrides the validator's default displacement cap.
func WithMaxMovementDistance(d float64) ActorOption {
	return func(a *Actor) { a.maxMove = d }
}

// NewActor creates an Actor at the given position. Without options it is a
// plain ground walker with the validator-default movement cap.
func NewActor(id uint32, name string, pos Position, opts ...ActorOption) *Actor {
	a := &Actor{
		id:      id,
		name:    name,
		terrain: MaskGround,
		pos:     pos,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EntityID returns the world-unique object ID.
func (a *Actor) EntityID() uint32 { return a.id }

// Name returns the display name.
func (a *Actor) Name() string { return a.name }

// CanTraverse reports whether the actor's mask permits the terrain.
func (a *Actor) CanTraverse(t TerrainType) bool { return a.terrain.Contains(t) }

// CanPassThrough reports whether the actor ignores entity collision.
func (a *Actor) CanPassThrough() bool { return a.passThrough }

// MaxMovementDistance returns the per-actor cap (0 = validator default).
func (a *Actor) MaxMovementDistance() float64 { return a.maxMove }

// Position returns the tracked position.
func (a *Actor) Position() Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pos
}

// SetPosition updates the tracked position. The world grid's occupancy index
// is the authority — callers move the grid first, then mirror here.
func (a *Actor) SetPosition(p Position) {
	a.mu.Lock()
	a.pos = p
	a.mu.Unlock()
}
