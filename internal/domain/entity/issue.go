package entity

import "time"

// IssueSeverity grades a reported defect.
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// IssueStatus tracks defect resolution progress.
type IssueStatus string

const (
	IssueReported   IssueStatus = "reported"
	IssueScheduled  IssueStatus = "scheduled"
	IssueInProgress IssueStatus = "in_progress"
	IssueDone       IssueStatus = "done"
)

// CanProgressTo reports whether status may move to next. Issues only
// move forward; skipping stages is allowed.
func (s IssueStatus) CanProgressTo(next IssueStatus) bool {
	order := map[IssueStatus]int{
		IssueReported:   0,
		IssueScheduled:  1,
		IssueInProgress: 2,
		IssueDone:       3,
	}
	cur, ok := order[s]
	if !ok {
		return false
	}
	nxt, ok := order[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// Issue is a reported defect against a vehicle. Open critical issues
// block assignment.
type Issue struct {
	ID          string        `json:"id"`
	VehicleID   string        `json:"vehicle_id"`
	VehicleName string        `json:"vehicle_name,omitempty"`
	Description string        `json:"description"`
	Severity    IssueSeverity `json:"severity"`
	Status      IssueStatus   `json:"status"`
	ImageURL    string        `json:"image_url,omitempty"`
	ReportedAt  time.Time     `json:"reported_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsOpen reports whether the issue is still unresolved.
func (i *Issue) IsOpen() bool {
	return i.Status != IssueDone
}

// BlocksAssignment reports whether this issue alone should prevent the
// vehicle from being assigned.
func (i *Issue) BlocksAssignment() bool {
	return i.Severity == SeverityCritical && i.IsOpen()
}
