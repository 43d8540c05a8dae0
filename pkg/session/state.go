package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for a (state, event) pair missing from the table.
var ErrInvalidTransition = errors.New("session: invalid transition")

// State is where the runner is in the prompt/detect cycle.
type State int

const (
	Prompting State = iota
	Detecting
	Done
)

func (s State) String() string {
	switch s {
	case Prompting:
		return "prompting"
	case Detecting:
		return "detecting"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is what ended a state's work.
type Event int

const (
	FilterChosen      Event = iota // Operator named a known class, or none
	UnknownClass                   // Operator named a class not in the catalog
	InputClosed                    // EOF or aborted prompt
	ReselectKey                    // Operator pressed the re-prompt key
	ExitKey                        // Operator pressed the exit key
	CameraUnavailable              // Device could not be opened or was lost
	Cancelled                      // Root context cancelled
	Failed                         // Unexpected collaborator error
)

func (e Event) String() string {
	switch e {
	case FilterChosen:
		return "filter_chosen"
	case UnknownClass:
		return "unknown_class"
	case InputClosed:
		return "input_closed"
	case ReselectKey:
		return "reselect_key"
	case ExitKey:
		return "exit_key"
	case CameraUnavailable:
		return "camera_unavailable"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var transitions = map[State]map[Event]State{
	Prompting: {
		FilterChosen: Detecting,
		UnknownClass: Prompting,
		InputClosed:  Done,
		Cancelled:    Done,
		Failed:       Done,
	},
	Detecting: {
		ReselectKey:       Prompting,
		ExitKey:           Done,
		CameraUnavailable: Done,
		Cancelled:         Done,
		Failed:            Done,
	},
}

// Next returns the state that follows s on event e.
func Next(s State, e Event) (State, error) {
	if to, ok := transitions[s][e]; ok {
		return to, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
