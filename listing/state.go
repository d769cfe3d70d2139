package listing

import "github.com/xraph/eventdesk/event"

// State is the controller's fetch state.
type State int

const (
	// StateIdle means no fetch is in flight; the last results are shown.
	StateIdle State = iota
	// StateLoading means a fetch is in flight; the previous results are
	// still shown.
	StateLoading
	// StateError means the last fetch failed and a notification was raised.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	State       State
	Events      []event.Event
	Query       Query
	Pagination  Pagination
	ActiveEvent *event.Event
	// Version increases with every state change.
	Version uint64
}

// Loading reports whether a fetch is in flight.
func (s Snapshot) Loading() bool { return s.State == StateLoading }
