package kheap

// State is the lifecycle of a Heap. Transitions only move forward:
// Uninitialized -> Initializing -> Ready.
type State uint32

const (
	// StateUninitialized: no allocation calls are valid.
	StateUninitialized State = iota
	// StateInitializing: Init is recording the heap range.
	StateInitializing
	// StateReady: terminal; all calls are served.
	StateReady
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}
