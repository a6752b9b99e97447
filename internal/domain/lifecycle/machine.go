package lifecycle

import (
	"fmt"
	"sort"
)

// Machine is an immutable transition table. It carries no current state of its
// own: the entity owning the lifecycle keeps the state, the machine only
// answers which transitions are legal from where. A single machine instance can
// therefore be shared by any number of entities.
type Machine interface {
	// CanFire returns true if the trigger is permitted in the given state.
	CanFire(from State, trigger Trigger) bool

	// Fire returns the target state for the trigger, or ErrInvalidTransition
	// if the trigger is not permitted in the given state.
	Fire(from State, trigger Trigger) (State, error)

	// PermittedTriggers returns all triggers that can fire from the given
	// state, in lexical order.
	PermittedTriggers(from State) []Trigger

	// IsTerminal returns true if no trigger can fire from the given state.
	IsTerminal(state State) bool
}

// Builder assembles a Machine from per-state transition configurations.
type Builder interface {
	// Configure returns the configuration for the given state, creating it
	// on first use.
	Configure(state State) StateConfiguration

	// Build compiles the configured transitions into an immutable Machine.
	Build() Machine
}

// StateConfiguration configures the transitions leaving a specific state.
type StateConfiguration interface {
	// Permit allows a trigger to transition to the target state.
	Permit(trigger Trigger, toState State) StateConfiguration
}

type stateConfig struct {
	fromState   State
	transitions map[Trigger]State
}

type machineBuilder struct {
	configurations map[State]*stateConfig
}

type machine struct {
	transitions map[State]map[Trigger]State
}

// NewBuilder creates a new machine builder.
func NewBuilder() Builder {
	return &machineBuilder{
		configurations: make(map[State]*stateConfig),
	}
}

func (b *machineBuilder) Configure(state State) StateConfiguration {
	if state == "" {
		panic("lifecycle: cannot configure empty state")
	}

	config, exists := b.configurations[state]
	if !exists {
		config = &stateConfig{
			fromState:   state,
			transitions: make(map[Trigger]State),
		}
		b.configurations[state] = config
	}

	return config
}

func (b *machineBuilder) Build() Machine {
	// Deep copy so further builder mutation cannot reach the machine
	transitions := make(map[State]map[Trigger]State, len(b.configurations))
	for state, config := range b.configurations {
		perTrigger := make(map[Trigger]State, len(config.transitions))
		for trigger, to := range config.transitions {
			perTrigger[trigger] = to
		}
		transitions[state] = perTrigger
	}

	return &machine{transitions: transitions}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if toState == "" {
		panic("lifecycle: cannot permit transition to empty state")
	}
	if _, exists := c.transitions[trigger]; exists {
		panic(fmt.Sprintf("lifecycle: trigger %s already configured for state %s", trigger, c.fromState))
	}

	c.transitions[trigger] = toState
	return c
}

func (m *machine) CanFire(from State, trigger Trigger) bool {
	perTrigger, exists := m.transitions[from]
	if !exists {
		return false
	}

	_, exists = perTrigger[trigger]
	return exists
}

func (m *machine) Fire(from State, trigger Trigger) (State, error) {
	perTrigger, exists := m.transitions[from]
	if !exists {
		return "", fmt.Errorf("%w: cannot fire trigger %s from state %s", ErrInvalidTransition, trigger, from)
	}

	to, exists := perTrigger[trigger]
	if !exists {
		return "", fmt.Errorf("%w: cannot fire trigger %s from state %s", ErrInvalidTransition, trigger, from)
	}

	return to, nil
}

func (m *machine) PermittedTriggers(from State) []Trigger {
	perTrigger, exists := m.transitions[from]
	if !exists {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(perTrigger))
	for trigger := range perTrigger {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })

	return triggers
}

func (m *machine) IsTerminal(state State) bool {
	return len(m.transitions[state]) == 0
}
