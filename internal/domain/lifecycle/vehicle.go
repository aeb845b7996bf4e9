package lifecycle

import "github.com/YEYOLABS/boundless-fleet/internal/domain/entity"

// NewVehicleMachine builds the vehicle lifecycle machine rooted at the
// vehicle's current status:
//
//	ready <-> on_tour
//	ready -> maintenance_required -> ready
//	ready/on_tour -> out_of_service
//	ready/on_tour/maintenance_required -> issue -> ready
//	ready/maintenance_required/issue -> decommissioned
//
// out_of_service and decommissioned are terminal. A vehicle on tour
// cannot be decommissioned; the tour must be unlinked first.
func NewVehicleMachine(current State) (Machine, error) {
	b := NewBuilder()

	b.Configure(entity.VehicleReady).
		Permit(TriggerStartTour, entity.VehicleOnTour).
		Permit(TriggerFlagMaintenance, entity.VehicleMaintenanceRequired).
		Permit(TriggerReportIssue, entity.VehicleIssue).
		Permit(TriggerRetire, entity.VehicleOutOfService).
		Permit(TriggerDecommission, entity.VehicleDecommissioned)

	b.Configure(entity.VehicleOnTour).
		Permit(TriggerEndTour, entity.VehicleReady).
		Permit(TriggerReportIssue, entity.VehicleIssue).
		Permit(TriggerRetire, entity.VehicleOutOfService)

	b.Configure(entity.VehicleMaintenanceRequired).
		Permit(TriggerServiceCompleted, entity.VehicleReady).
		Permit(TriggerReportIssue, entity.VehicleIssue).
		Permit(TriggerDecommission, entity.VehicleDecommissioned)

	b.Configure(entity.VehicleIssue).
		Permit(TriggerResolveIssue, entity.VehicleReady).
		Permit(TriggerDecommission, entity.VehicleDecommissioned)

	return b.Build(current)
}
