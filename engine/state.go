package engine

import "fmt"

// State tracks a run through its lifecycle. Finalized and Failed are
// terminal; no state is ever skipped.
type State uint8

const (
	Created State = iota
	Started
	Running
	Stopped
	Finalized
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Started:
		return "started"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Finalized:
		return "finalized"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

var transitions = map[State][]State{
	Created: {Started},
	Started: {Running},
	Running: {Stopped, Failed},
	Stopped: {Finalized},
}

func (s State) canTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
