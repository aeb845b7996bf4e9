package lifecycle

import "fmt"

// Builder configures the allowed transitions before building machines.
type Builder interface {
	// Configure returns the configuration for transitions out of state.
	Configure(state State) StateConfiguration

	// Build creates an independent machine starting at initialState.
	Build(initialState State) (Machine, error)
}

// StateConfiguration configures transitions for one source state.
type StateConfiguration interface {
	// Permit allows trigger to transition to toState.
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows the transition only while guard passes at fire
	// time.
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type builder struct {
	transitions map[State]map[Trigger][]transition
}

type stateConfig struct {
	builder   *builder
	fromState State
}

// NewBuilder creates an empty transition table builder.
func NewBuilder() Builder {
	return &builder{
		transitions: make(map[State]map[Trigger][]transition),
	}
}

func (b *builder) Configure(state State) StateConfiguration {
	if !IsValidState(state) {
		panic(fmt.Sprintf("lifecycle: unknown state %q", state))
	}
	if _, ok := b.transitions[state]; !ok {
		b.transitions[state] = make(map[Trigger][]transition)
	}
	return &stateConfig{builder: b, fromState: state}
}

func (b *builder) Build(initialState State) (Machine, error) {
	if !IsValidState(initialState) {
		return nil, fmt.Errorf("%w: unknown initial state %q", ErrInvalidTransition, initialState)
	}

	// Copy the table so built machines stay independent of later
	// Configure calls.
	copied := make(map[State]map[Trigger][]transition, len(b.transitions))
	for state, byTrigger := range b.transitions {
		byTriggerCopy := make(map[Trigger][]transition, len(byTrigger))
		for trigger, ts := range byTrigger {
			byTriggerCopy[trigger] = append([]transition(nil), ts...)
		}
		copied[state] = byTriggerCopy
	}

	return &machine{current: initialState, transitions: copied}, nil
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !IsValidState(toState) {
		panic(fmt.Sprintf("lifecycle: unknown target state %q", toState))
	}
	if IsTerminal(c.fromState) {
		panic(fmt.Sprintf("lifecycle: %q is terminal and permits no transitions", c.fromState))
	}
	byTrigger := c.builder.transitions[c.fromState]
	byTrigger[trigger] = append(byTrigger[trigger], transition{toState: toState, guard: guard})
	return c
}
