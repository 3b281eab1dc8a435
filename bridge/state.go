package bridge

import "fmt"

// State is the supervisor lifecycle state.
type State int

const (
	StateUnstarted State = iota
	StateStarting
	StateReady
	StateStopping
	StateStopped
	StateFailed // terminal; construct a new Bridge to retry
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// canStart reports whether Start may be called from s.
func (s State) canStart() bool {
	return s == StateUnstarted || s == StateStopped
}

var transitions = map[State][]State{
	StateUnstarted: {StateStarting},
	StateStarting:  {StateReady, StateStopping, StateFailed},
	StateReady:     {StateStopping, StateStopped},
	StateStopping:  {StateStopped},
	StateStopped:   {StateStarting},
	StateFailed:    nil,
}

// stateMachine validates lifecycle transitions. It is not synchronized;
// Bridge.mu guards it together with the run it describes.
type stateMachine struct {
	state State
}

func (m *stateMachine) Current() State {
	return m.state
}

func (m *stateMachine) transition(to State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == to {
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidState, m.state, to)
}
