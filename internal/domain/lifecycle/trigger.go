package lifecycle

// Trigger is an event that can cause a lifecycle transition.
type Trigger string

const (
	TriggerStartTour        Trigger = "START_TOUR"
	TriggerEndTour          Trigger = "END_TOUR"
	TriggerFlagMaintenance  Trigger = "FLAG_MAINTENANCE"
	TriggerServiceCompleted Trigger = "SERVICE_COMPLETED"
	TriggerReportIssue      Trigger = "REPORT_ISSUE"
	TriggerResolveIssue     Trigger = "RESOLVE_ISSUE"
	TriggerRetire           Trigger = "RETIRE"
	TriggerDecommission     Trigger = "DECOMMISSION"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
