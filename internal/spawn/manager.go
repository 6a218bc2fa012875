package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hollowmere/ashfall/internal/ai"
	"github.com/hollowmere/ashfall/internal/game/nav"
	"github.com/hollowmere/ashfall/internal/model"
	"github.com/hollowmere/ashfall/internal/world"
)

// walkerEntityBase is the first entity ID handed to spawned walkers.
// Player sessions use the lower range.
const walkerEntityBase = 100_000

// walkerSearch is the route search profile for spawned walkers. Smoothing
// stays off so every route element is one 8-connected step from the
// previous one, which is what the per-tick mover applies.
var walkerSearch = nav.Options{
	ReturnPartialPath:     true,
	CheckDiagonalBlockage: true,
}

type spawned struct {
	actor *model.Actor
	def   Definition
}

// Manager places walkers on the grid and owns their AI controllers.
type Manager struct {
	grid       *world.Grid
	dispatcher *nav.Dispatcher
	aiManager  *ai.TickManager
	respawns   *RespawnQueue

	defs   sync.Map // map[string]Definition — name → definition
	active sync.Map // map[uint32]*spawned — entityID → live walker
	names  sync.Map // map[string]uint32 — name → entityID

	idCounter   atomic.Uint32
	activeCount atomic.Int32 // cached count of live walkers (O(1) access)
}

// NewManager creates a spawn manager over the grid, the route dispatcher,
// and the AI tick manager.
func NewManager(grid *world.Grid, dispatcher *nav.Dispatcher, aiManager *ai.TickManager) *Manager {
	mgr := &Manager{
		grid:       grid,
		dispatcher: dispatcher,
		aiManager:  aiManager,
	}

	mgr.idCounter.Store(walkerEntityBase)

	return mgr
}

// AttachRespawnQueue wires the queue that Despawn schedules into.
func (m *Manager) AttachRespawnQueue(q *RespawnQueue) {
	m.respawns = q
}

// LoadDefinitions pulls spawn definitions from a source, keyed by name.
func (m *Manager) LoadDefinitions(ctx context.Context, src Source) error {
	defs, err := src.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading spawn definitions: %w", err)
	}

	count := 0
	for _, def := range defs {
		m.defs.Store(def.Name, def)
		count++
	}

	slog.Info("spawn definitions loaded", "count", count)
	return nil
}

// Spawn places one walker on the grid and registers its AI controller.
// Escorts may spawn before their leader; the controller idles until the
// leader shows up.
func (m *Manager) Spawn(def Definition) (*model.Actor, error) {
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("spawning walker: %w", err)
	}

	pos := m.grid.SurfacePosition(def.X, def.Y)
	if !m.grid.IsWalkable(pos) {
		return nil, fmt.Errorf("spawning %q: cell (%d,%d) is not walkable", def.Name, def.X, def.Y)
	}

	waypoints, err := m.resolveWaypoints(def)
	if err != nil {
		return nil, err
	}

	entityID := m.idCounter.Add(1)

	if _, taken := m.names.LoadOrStore(def.Name, entityID); taken {
		return nil, fmt.Errorf("spawning %q: name already in use", def.Name)
	}

	actor := model.NewActor(entityID, def.Name, pos)

	if err := m.grid.PlaceEntity(entityID, pos); err != nil {
		m.names.Delete(def.Name)
		return nil, fmt.Errorf("placing %q: %w", def.Name, err)
	}

	var controller ai.Controller
	switch def.Kind {
	case KindPatrol:
		controller = ai.NewPatrolAI(actor, waypoints, m.planRoute, m.moveStep)
	case KindEscort:
		controller = ai.NewEscortAI(actor, m.leaderFunc(def), m.planRoute, m.moveStep)
	default:
		m.grid.RemoveEntity(entityID)
		m.names.Delete(def.Name)
		return nil, fmt.Errorf("spawning %q: unknown kind %d", def.Name, def.Kind)
	}

	m.active.Store(entityID, &spawned{actor: actor, def: def})
	m.activeCount.Add(1)
	m.aiManager.Register(entityID, controller)

	slog.Info("walker spawned",
		"entityID", entityID,
		"name", def.Name,
		"kind", def.Kind,
		"position", pos)

	return actor, nil
}

// Despawn removes a walker from the grid and its AI from the tick loop.
// Walkers with a respawn delay are handed to the respawn queue.
func (m *Manager) Despawn(entityID uint32) {
	value, ok := m.active.LoadAndDelete(entityID)
	if !ok {
		slog.Warn("despawning unknown walker", "entityID", entityID)
		return
	}
	sp := value.(*spawned)

	m.aiManager.Unregister(entityID)
	m.grid.RemoveEntity(entityID)
	m.names.Delete(sp.def.Name)
	m.activeCount.Add(-1)

	slog.Info("walker despawned", "entityID", entityID, "name", sp.def.Name)

	if sp.def.RespawnDelay > 0 && m.respawns != nil {
		m.respawns.Schedule(sp.def, sp.def.RespawnDelay)
	}
}

// SpawnAll spawns every loaded definition. Failures are logged and skipped;
// the first one is returned after the rest have been attempted.
func (m *Manager) SpawnAll(ctx context.Context) error {
	count := 0
	var firstErr error

	m.defs.Range(func(_, value any) bool {
		def := value.(Definition)

		if ctx.Err() != nil {
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			return false
		}

		if _, err := m.Spawn(def); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Error("failed to spawn walker", "name", def.Name, "error", err)
			return true // continue with the rest
		}
		count++

		return true
	})

	if firstErr != nil {
		slog.Warn("SpawnAll completed with errors", "spawned", count, "error", firstErr)
		return fmt.Errorf("spawning walkers: %w", firstErr)
	}

	slog.Info("all walkers spawned", "count", count)
	return nil
}

// ActiveCount returns the number of live walkers (O(1) cached count).
func (m *Manager) ActiveCount() int {
	return int(m.activeCount.Load())
}

// Actor returns the live actor with the given entity ID.
func (m *Manager) Actor(entityID uint32) (*model.Actor, bool) {
	value, ok := m.active.Load(entityID)
	if !ok {
		return nil, false
	}
	return value.(*spawned).actor, true
}

// EntityIDByName resolves a walker name to its live entity ID.
func (m *Manager) EntityIDByName(name string) (uint32, bool) {
	value, ok := m.names.Load(name)
	if !ok {
		return 0, false
	}
	return value.(uint32), true
}

// resolveWaypoints maps patrol waypoint columns onto walkable surface cells.
func (m *Manager) resolveWaypoints(def Definition) ([]model.Position, error) {
	if def.Kind != KindPatrol {
		return nil, nil
	}

	waypoints := make([]model.Position, len(def.Waypoints))
	for i, wp := range def.Waypoints {
		p := m.grid.SurfacePosition(wp[0], wp[1])
		if !m.grid.IsWalkable(p) {
			return nil, fmt.Errorf("spawning %q: waypoint %d at (%d,%d) is not walkable",
				def.Name, i, wp[0], wp[1])
		}
		waypoints[i] = p
	}
	return waypoints, nil
}

// planRoute is the PathFunc handed to controllers. Search failures and
// exhausted budgets surface as an empty route; controllers retry later.
func (m *Manager) planRoute(ent model.Entity, from, to model.Position) []model.Position {
	route, err := m.dispatcher.FindPath(context.Background(), ent, from, to, walkerSearch)
	if err != nil {
		return nil
	}
	return route
}

// moveStep is the MoveFunc handed to controllers. It enforces walkability,
// terrain capability, and cell occupancy before committing the step.
func (m *Manager) moveStep(actor *model.Actor, to model.Position) bool {
	if !m.grid.IsWalkable(to) {
		return false
	}
	if !actor.CanTraverse(m.grid.TerrainAt(to)) {
		return false
	}
	if err := m.grid.MoveEntity(actor.EntityID(), to); err != nil {
		return false
	}
	actor.SetPosition(to)
	return true
}

// leaderFunc resolves an escort's leader position on every call, so leaders
// that spawn late or despawn are picked up naturally.
func (m *Manager) leaderFunc(def Definition) ai.LeaderFunc {
	return func() (model.Position, bool) {
		id := def.LeaderID
		if def.Leader != "" {
			var ok bool
			id, ok = m.EntityIDByName(def.Leader)
			if !ok {
				return model.Position{}, false
			}
		}
		return m.grid.EntityPosition(id)
	}
}
