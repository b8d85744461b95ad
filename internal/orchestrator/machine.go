package orchestrator

// #region imports
import (
	"errors"
	"fmt"
)

// #endregion

// #region states

// State is a node of the turn state machine.
type State string

const (
	StateStart     State = "start"
	StateClassify  State = "classify"
	StateClarify   State = "clarify"
	StateResolve   State = "resolve"
	StateRecommend State = "recommend"
	StateReply     State = "reply"
	StateReflect   State = "reflect"
	StateEscalate  State = "escalate"
	StateIdle      State = "idle"
)

// Event drives a transition.
type Event string

const (
	EventBegin            Event = "begin"
	EventScreened         Event = "screened" // blocked or off-topic input
	EventInsufficientInfo Event = "insufficient_info"
	EventNewRequest       Event = "new_request"
	EventFollowUp         Event = "follow_up"
	EventMissingFields    Event = "missing_fields"
	EventShortCircuit     Event = "short_circuit" // restricted goods or no rates
	EventResolved         Event = "resolved"
	EventRecommended      Event = "recommended"
	EventVerifyRequested  Event = "verify_requested"
	EventEscalate         Event = "escalate"
	EventDone             Event = "done"
)

// #endregion

// #region transitions

// ErrInvalidTransition means the event is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid transition")

var transitions = map[State]map[Event]State{
	StateStart: {
		EventBegin: StateClassify,
	},
	StateClassify: {
		EventInsufficientInfo: StateClarify,
		EventNewRequest:       StateResolve,
		EventFollowUp:         StateReflect,
		EventScreened:         StateReply,
	},
	StateClarify: {
		EventDone: StateIdle,
	},
	StateResolve: {
		EventResolved:      StateRecommend,
		EventMissingFields: StateClarify,
		EventShortCircuit:  StateReply,
	},
	StateRecommend: {
		EventRecommended:  StateReply,
		EventShortCircuit: StateReply,
	},
	StateReply: {
		EventDone:            StateIdle,
		EventVerifyRequested: StateReflect,
		EventEscalate:        StateEscalate,
	},
	StateReflect: {
		EventDone:     StateIdle,
		EventEscalate: StateEscalate,
	},
	StateEscalate: {
		EventDone: StateIdle,
	},
}

// Transition returns the state reached from s on e.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%s --%s-->: %w", s, e, ErrInvalidTransition)
	}
	return next, nil
}

// #endregion

// #region machine

// machine walks one turn through the graph and records the path.
type machine struct {
	state State
	path  []State
}

func newMachine() *machine {
	return &machine{state: StateStart, path: []State{StateStart}}
}

func (m *machine) fire(e Event) error {
	next, err := Transition(m.state, e)
	if err != nil {
		return err
	}
	m.state = next
	m.path = append(m.path, next)
	return nil
}

// #endregion
