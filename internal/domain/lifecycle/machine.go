package lifecycle

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a candidate transition should be taken.
type GuardFunc func(ctx context.Context) bool

// Machine tracks a vehicle's current state and validates transitions.
type Machine interface {
	// State returns the current state.
	State() State

	// CanFire reports whether the trigger is permitted in the current
	// state, ignoring guards.
	CanFire(trigger Trigger) bool

	// Fire attempts the trigger, moving to the target state of the
	// first transition whose guard passes.
	Fire(ctx context.Context, trigger Trigger) error
}

type transition struct {
	toState State
	guard   GuardFunc
}

type machine struct {
	current     State
	transitions map[State]map[Trigger][]transition
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	byTrigger, ok := m.transitions[m.current]
	if !ok {
		return false
	}
	return len(byTrigger[trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	byTrigger, ok := m.transitions[m.current]
	if !ok || len(byTrigger[trigger]) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range byTrigger[trigger] {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.toState
			return nil
		}
	}

	return fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}
