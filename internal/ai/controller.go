package ai

// State represents what an AI controller is currently doing with its actor.
type State int32

const (
	// StateIdle — no active route; the controller plans on its next tick.
	StateIdle State = iota

	// StateMoving — the controller is walking a planned route step by step.
	StateMoving

	// StateWaiting — the controller is pausing in place for a few ticks.
	StateWaiting
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMoving:
		return "MOVING"
	case StateWaiting:
		return "WAITING"
	default:
		return "UNKNOWN"
	}
}

// Controller represents AI controller interface for actors
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// State returns current controller state
	State() State

	// Tick performs AI tick (called every tick interval)
	Tick()
}
