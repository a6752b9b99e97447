package lifecycle

// State represents a node in a lifecycle state machine.
type State string

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
