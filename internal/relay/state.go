package relay

// State tracks a relay through its lifecycle. Transitions only move
// forward: Idle -> Starting -> Running -> ShuttingDown -> Stopped, with
// Failed as a terminal alternative when startup or the stream breaks.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateShuttingDown
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
