package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/port"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

// ReportIssueInput carries a new defect report against a vehicle.
type ReportIssueInput struct {
	VehicleID   string
	Description string
	Severity    entity.IssueSeverity
	ImageURL    string
}

func validSeverity(s entity.IssueSeverity) bool {
	switch s {
	case entity.SeverityLow, entity.SeverityMedium, entity.SeverityHigh, entity.SeverityCritical:
		return true
	}
	return false
}

// IssueService tracks vehicle defects. Critical open issues flip the
// vehicle into the issue state and block driver assignment until
// resolved.
type IssueService interface {
	Report(ctx context.Context, input ReportIssueInput) (*entity.Issue, error)
	Get(ctx context.Context, id string) (*entity.Issue, error)
	List(ctx context.Context) ([]*entity.Issue, error)
	ListOpenByVehicle(ctx context.Context, vehicleID string) ([]*entity.Issue, error)

	// Progress moves an issue forward through its workflow. Completing
	// the last critical issue on a vehicle returns the vehicle to ready.
	Progress(ctx context.Context, id string, next entity.IssueStatus) (*entity.Issue, error)
}

type issueService struct {
	issues     port.IssueRepository
	vehicles   port.VehicleRepository
	assignment AssignmentService
	logger     *zap.Logger
}

// NewIssueService creates a new IssueService.
func NewIssueService(
	issues port.IssueRepository,
	vehicles port.VehicleRepository,
	assignment AssignmentService,
	logger *zap.Logger,
) IssueService {
	return &issueService{
		issues:     issues,
		vehicles:   vehicles,
		assignment: assignment,
		logger:     logger,
	}
}

func (s *issueService) Report(ctx context.Context, input ReportIssueInput) (*entity.Issue, error) {
	if input.VehicleID == "" || input.Description == "" {
		return nil, fmt.Errorf("%w: vehicle id and description are required", entity.ErrValidation)
	}
	if !validSeverity(input.Severity) {
		return nil, fmt.Errorf("%w: unknown severity %q", entity.ErrValidation, input.Severity)
	}

	vehicle, err := s.vehicles.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == entity.VehicleDecommissioned || vehicle.Status == entity.VehicleOutOfService {
		return nil, fmt.Errorf("%w: vehicle %s is %s", entity.ErrConflict, vehicle.ID, vehicle.Status)
	}

	now := time.Now().UTC()
	issue := &entity.Issue{
		ID:          uuid.NewString(),
		VehicleID:   vehicle.ID,
		VehicleName: vehicle.LicenceNumber,
		Description: input.Description,
		Severity:    input.Severity,
		Status:      entity.IssueReported,
		ImageURL:    input.ImageURL,
		ReportedAt:  now,
		UpdatedAt:   now,
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	if issue.BlocksAssignment() {
		if err := s.assignment.MarkIssue(ctx, vehicle.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Issue reported",
		zap.String("issue_id", issue.ID),
		zap.String("vehicle_id", vehicle.ID),
		zap.String("severity", string(issue.Severity)))
	return issue, nil
}

func (s *issueService) Get(ctx context.Context, id string) (*entity.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

func (s *issueService) List(ctx context.Context) ([]*entity.Issue, error) {
	return s.issues.List(ctx)
}

func (s *issueService) ListOpenByVehicle(ctx context.Context, vehicleID string) ([]*entity.Issue, error) {
	return s.issues.ListOpenByVehicle(ctx, vehicleID)
}

func (s *issueService) Progress(ctx context.Context, id string, next entity.IssueStatus) (*entity.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !issue.Status.CanProgressTo(next) {
		return nil, fmt.Errorf("%w: cannot move issue from %s to %s", entity.ErrConflict, issue.Status, next)
	}

	wasBlocking := issue.BlocksAssignment()
	issue.Status = next
	issue.UpdatedAt = time.Now().UTC()
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, err
	}

	// Resolving the last critical issue clears the vehicle's issue
	// state.
	if wasBlocking && !issue.IsOpen() {
		open, err := s.issues.ListOpenByVehicle(ctx, issue.VehicleID)
		if err != nil {
			return nil, err
		}
		blocking := false
		for _, o := range open {
			if o.BlocksAssignment() {
				blocking = true
				break
			}
		}
		if !blocking {
			if err := s.assignment.ClearIssue(ctx, issue.VehicleID); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("Issue progressed",
		zap.String("issue_id", issue.ID),
		zap.String("status", string(issue.Status)))
	return issue, nil
}
