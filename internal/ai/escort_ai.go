package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/hollowmere/ashfall/internal/model"
)

// LeaderFunc resolves the current cell of an escort's leader.
// Returns false when the leader is no longer tracked in the world.
// Injected by the spawn manager so this package carries no world import.
type LeaderFunc func() (model.Position, bool)

const (
	// escortFollowDistance is the Chebyshev distance at which the escort
	// considers itself caught up and stops walking.
	escortFollowDistance = 2

	// escortReplanDrift is how far the leader may drift from the planned
	// goal cell before the active route is thrown away.
	escortReplanDrift = 2
)

// EscortAI keeps an actor trailing a moving leader.
// State machine: IDLE (no leader or no route) → MOVING (walk toward the
// leader's cell) → WAITING (caught up, hold position). The route is
// replanned when the leader drifts away from the planned goal.
type EscortAI struct {
	actor     *model.Actor
	isRunning atomic.Bool
	state     atomic.Int32

	// Callbacks (injected by the spawn manager)
	leaderFunc LeaderFunc
	pathFunc   PathFunc
	moveFunc   MoveFunc

	// Route state. Only touched from Tick(), which runs on the
	// TickManager goroutine, so no locking is needed.
	route     []model.Position
	routeStep int
	goal      model.Position
}

// NewEscortAI creates an escort controller trailing the leader reported
// by leaderFunc.
func NewEscortAI(
	actor *model.Actor,
	leaderFunc LeaderFunc,
	pathFunc PathFunc,
	moveFunc MoveFunc,
) *EscortAI {
	return &EscortAI{
		actor:      actor,
		leaderFunc: leaderFunc,
		pathFunc:   pathFunc,
		moveFunc:   moveFunc,
	}
}

// Start starts the escort controller.
func (ai *EscortAI) Start() {
	ai.isRunning.Store(true)
	ai.setState(StateIdle)

	if IsDebugEnabled() {
		slog.Debug("escort AI started",
			"entityID", ai.actor.EntityID(),
			"name", ai.actor.Name())
	}
}

// Stop stops the escort controller and drops any active route.
func (ai *EscortAI) Stop() {
	ai.isRunning.Store(false)
	ai.route = nil
	ai.setState(StateIdle)

	if IsDebugEnabled() {
		slog.Debug("escort AI stopped",
			"entityID", ai.actor.EntityID(),
			"name", ai.actor.Name())
	}
}

// State returns the controller's current state.
func (ai *EscortAI) State() State {
	return State(ai.state.Load())
}

// Actor returns the actor driven by this controller.
func (ai *EscortAI) Actor() *model.Actor {
	return ai.actor
}

// Tick performs one escort step: track the leader, plan, or walk.
func (ai *EscortAI) Tick() {
	if !ai.isRunning.Load() || ai.leaderFunc == nil {
		return
	}

	leaderPos, ok := ai.leaderFunc()
	if !ok {
		// Leader gone; hold position until it is tracked again.
		ai.route = nil
		ai.setState(StateIdle)
		return
	}

	if ai.actor.Position().ChebyshevDistance(leaderPos) <= escortFollowDistance {
		ai.route = nil
		ai.setState(StateWaiting)
		return
	}

	if len(ai.route) > 0 && ai.goal.ChebyshevDistance(leaderPos) > escortReplanDrift {
		// Leader drifted off the planned goal; the route is stale.
		ai.route = nil
	}

	if len(ai.route) == 0 {
		ai.planRoute(leaderPos)
		return
	}

	ai.stepRoute()
}

// planRoute asks for a route to the leader's cell. Planning takes the
// whole tick; walking starts on the next one.
func (ai *EscortAI) planRoute(target model.Position) {
	if ai.pathFunc == nil {
		return
	}

	route := ai.pathFunc(ai.actor, ai.actor.Position(), target)
	if len(route) <= 1 {
		// Leader unreachable right now; retry on the next tick.
		ai.setState(StateIdle)
		return
	}

	ai.route = route
	ai.routeStep = 1 // route[0] is the actor's own cell
	ai.goal = target
	ai.setState(StateMoving)

	if IsDebugEnabled() {
		slog.Debug("escort route planned",
			"entityID", ai.actor.EntityID(),
			"goal", target,
			"steps", len(route)-1)
	}
}

// stepRoute advances one cell toward the leader.
func (ai *EscortAI) stepRoute() {
	if ai.moveFunc == nil {
		return
	}

	next := ai.route[ai.routeStep]
	if !ai.moveFunc(ai.actor, next) {
		// Step rejected; drop the route and replan from the current cell.
		ai.route = nil
		ai.setState(StateIdle)

		if IsDebugEnabled() {
			slog.Debug("escort step blocked",
				"entityID", ai.actor.EntityID(),
				"to", next)
		}
		return
	}

	ai.routeStep++
	if ai.routeStep >= len(ai.route) {
		ai.route = nil
		ai.setState(StateIdle)
	}
}

func (ai *EscortAI) setState(s State) {
	ai.state.Store(int32(s))
}
