// Package lifecycle models the vehicle status state machine. The engine
// never writes Vehicle.Status directly: every transition goes through a
// built Machine so illegal jumps (and any write out of a terminal state)
// are rejected uniformly.
package lifecycle

import "github.com/YEYOLABS/boundless-fleet/internal/domain/entity"

// State is a vehicle lifecycle state.
type State = entity.VehicleStatus

var validStates = map[State]bool{
	entity.VehicleReady:               true,
	entity.VehicleOnTour:              true,
	entity.VehicleMaintenanceRequired: true,
	entity.VehicleOutOfService:        true,
	entity.VehicleIssue:               true,
	entity.VehicleDecommissioned:      true,
}

// Out-of-service vehicles may not be assigned again without an explicit
// reactivation operation, which does not exist yet; until it does the
// state is effectively terminal alongside decommissioned.
var terminalStates = map[State]bool{
	entity.VehicleOutOfService:   true,
	entity.VehicleDecommissioned: true,
}

// IsValidState reports whether s is a known lifecycle state.
func IsValidState(s State) bool {
	return validStates[s]
}

// IsTerminal reports whether s permits no further transitions.
func IsTerminal(s State) bool {
	return terminalStates[s]
}
