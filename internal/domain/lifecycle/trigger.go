package lifecycle

// Trigger represents an event that can cause a state transition.
type Trigger string

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
