package dragndrop

import (
	"errors"
	"fmt"
)

// ErrRejectedTransition is returned when a message arrives in a state that
// cannot accept it, such as a drop without a prior enter.
var ErrRejectedTransition = errors.New("rejected drag and drop transition")

// State is the responder side of one drag.
type State int

const (
	Idle State = iota
	Entered
	Positioned
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Entered:
		return "entered"
	case Positioned:
		return "positioned"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Message is an XDND client message received from the drag source.
type Message int

const (
	MsgEnter Message = iota
	MsgPosition
	MsgDrop
	MsgLeave
)

func (m Message) String() string {
	switch m {
	case MsgEnter:
		return "XdndEnter"
	case MsgPosition:
		return "XdndPosition"
	case MsgDrop:
		return "XdndDrop"
	case MsgLeave:
		return "XdndLeave"
	}
	return fmt.Sprintf("message(%d)", int(m))
}

// A new Enter restarts the session from any state; a source that crashed
// mid-drag never sends Leave.
var transitions = map[State]map[Message]State{
	Idle: {
		MsgEnter: Entered,
	},
	Entered: {
		MsgEnter:    Entered,
		MsgPosition: Positioned,
		MsgDrop:     Idle,
		MsgLeave:    Idle,
	},
	Positioned: {
		MsgEnter:    Entered,
		MsgPosition: Positioned,
		MsgDrop:     Idle,
		MsgLeave:    Idle,
	},
}

// next returns the state reached from s on m.
func next(s State, m Message) (State, error) {
	to, ok := transitions[s][m]
	if !ok {
		return s, fmt.Errorf("%w: %s in state %s", ErrRejectedTransition, m, s)
	}
	return to, nil
}
