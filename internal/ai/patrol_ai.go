package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/hollowmere/ashfall/internal/model"
)

// PathFunc plans a route for an entity between two world cells.
// The returned route starts at the entity's own cell; empty means no route.
// Injected by the spawn manager so this package carries no nav import.
type PathFunc func(ent model.Entity, from, to model.Position) []model.Position

// MoveFunc applies a single movement step on the world grid.
// Returns false when the world rejects the step (blocked or occupied cell).
// Injected by the spawn manager so this package carries no world import.
type MoveFunc func(actor *model.Actor, to model.Position) bool

// patrolPauseTicks is how many ticks a patroller idles at each waypoint.
const patrolPauseTicks = 2

// PatrolAI walks an actor around a closed waypoint loop.
// State machine: IDLE (plan route) → MOVING (step route) → WAITING (pause
// at waypoint) → IDLE. A rejected step drops the route; the controller
// replans from the actor's current cell on the next tick.
type PatrolAI struct {
	actor     *model.Actor
	waypoints []model.Position
	isRunning atomic.Bool
	state     atomic.Int32

	// Callbacks (injected by the spawn manager)
	pathFunc PathFunc
	moveFunc MoveFunc

	// Route state. Only touched from Tick(), which runs on the
	// TickManager goroutine, so no locking is needed.
	route     []model.Position
	routeStep int
	wpIndex   int
	waitTicks int
}

// NewPatrolAI creates a patrol controller for an actor and its waypoint loop.
func NewPatrolAI(
	actor *model.Actor,
	waypoints []model.Position,
	pathFunc PathFunc,
	moveFunc MoveFunc,
) *PatrolAI {
	return &PatrolAI{
		actor:     actor,
		waypoints: waypoints,
		pathFunc:  pathFunc,
		moveFunc:  moveFunc,
	}
}

// Start starts the patrol controller.
func (ai *PatrolAI) Start() {
	ai.isRunning.Store(true)
	ai.setState(StateIdle)

	if IsDebugEnabled() {
		slog.Debug("patrol AI started",
			"entityID", ai.actor.EntityID(),
			"name", ai.actor.Name(),
			"waypoints", len(ai.waypoints))
	}
}

// Stop stops the patrol controller and drops any active route.
func (ai *PatrolAI) Stop() {
	ai.isRunning.Store(false)
	ai.route = nil
	ai.waitTicks = 0
	ai.setState(StateIdle)

	if IsDebugEnabled() {
		slog.Debug("patrol AI stopped",
			"entityID", ai.actor.EntityID(),
			"name", ai.actor.Name())
	}
}

// State returns the controller's current state.
func (ai *PatrolAI) State() State {
	return State(ai.state.Load())
}

// Actor returns the actor driven by this controller.
func (ai *PatrolAI) Actor() *model.Actor {
	return ai.actor
}

// Tick performs one patrol step: pause, plan, or walk.
func (ai *PatrolAI) Tick() {
	if !ai.isRunning.Load() || len(ai.waypoints) == 0 {
		return
	}

	if ai.waitTicks > 0 {
		ai.waitTicks--
		if ai.waitTicks == 0 {
			ai.wpIndex = (ai.wpIndex + 1) % len(ai.waypoints)
			ai.setState(StateIdle)
		}
		return
	}

	if len(ai.route) == 0 {
		ai.planRoute()
		return
	}

	ai.stepRoute()
}

// planRoute asks for a route to the current waypoint. Planning takes the
// whole tick; walking starts on the next one.
func (ai *PatrolAI) planRoute() {
	if ai.pathFunc == nil {
		return
	}

	target := ai.waypoints[ai.wpIndex]
	route := ai.pathFunc(ai.actor, ai.actor.Position(), target)
	if len(route) == 0 {
		// Waypoint unreachable right now; retry on the next tick.
		return
	}
	if len(route) == 1 {
		ai.arriveAtWaypoint()
		return
	}

	ai.route = route
	ai.routeStep = 1 // route[0] is the actor's own cell
	ai.setState(StateMoving)

	if IsDebugEnabled() {
		slog.Debug("patrol route planned",
			"entityID", ai.actor.EntityID(),
			"waypoint", ai.wpIndex,
			"steps", len(route)-1)
	}
}

// stepRoute advances one cell along the active route.
func (ai *PatrolAI) stepRoute() {
	if ai.moveFunc == nil {
		return
	}

	next := ai.route[ai.routeStep]
	if !ai.moveFunc(ai.actor, next) {
		// Step rejected; drop the route and replan from the current cell.
		ai.route = nil
		ai.setState(StateIdle)

		if IsDebugEnabled() {
			slog.Debug("patrol step blocked",
				"entityID", ai.actor.EntityID(),
				"to", next)
		}
		return
	}

	ai.routeStep++
	if ai.routeStep >= len(ai.route) {
		ai.arriveAtWaypoint()
	}
}

// arriveAtWaypoint switches the controller into its waypoint pause.
func (ai *PatrolAI) arriveAtWaypoint() {
	ai.route = nil
	ai.waitTicks = patrolPauseTicks
	ai.setState(StateWaiting)

	if IsDebugEnabled() {
		slog.Debug("patrol waypoint reached",
			"entityID", ai.actor.EntityID(),
			"waypoint", ai.wpIndex)
	}
}

func (ai *PatrolAI) setState(s State) {
	ai.state.Store(int32(s))
}
