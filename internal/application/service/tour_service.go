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

// CreateTourInput carries the fields needed to create a tour.
type CreateTourInput struct {
	Reference       string
	Name            string
	Supplier        string
	StartDate       time.Time
	EndDate         time.Time
	Status          entity.TourStatus
	EstimatedKm     int64
	TrailerRequired bool
	Pax             int
	Itinerary       string
	Instructions    string
	Notes           string
	CreatedBy       string
}

// UpdateTourInput carries the mutable tour fields. Nil pointers leave
// the stored value untouched.
type UpdateTourInput struct {
	Reference       *string
	Name            *string
	Supplier        *string
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *entity.TourStatus
	EstimatedKm     *int64
	TrailerRequired *bool
	Pax             *int
	Itinerary       *string
	Instructions    *string
	Notes           *string
}

// tourStatusOrder drives forward progression. Cancellation is allowed
// from any non-terminal status and is handled separately.
var tourStatusOrder = map[entity.TourStatus]int{
	entity.TourPlanned:   0,
	entity.TourConfirmed: 1,
	entity.TourActive:    2,
	entity.TourCompleted: 3,
}

// TourService manages the tour schedule and keeps vehicle lifecycle
// state in step with tour status changes.
type TourService interface {
	Create(ctx context.Context, input CreateTourInput) (*entity.Tour, error)
	Get(ctx context.Context, id string) (*entity.Tour, error)
	// List returns tours, optionally filtered by status. An empty status
	// returns everything.
	List(ctx context.Context, status entity.TourStatus) ([]*entity.Tour, error)
	Update(ctx context.Context, id string, input UpdateTourInput) (*entity.Tour, error)
	Delete(ctx context.Context, id string) error
}

type tourService struct {
	tours      port.TourRepository
	assignment AssignmentService
	txManager  port.TransactionManager
	logger     *zap.Logger
}

// NewTourService creates a new TourService.
func NewTourService(
	tours port.TourRepository,
	assignment AssignmentService,
	txManager port.TransactionManager,
	logger *zap.Logger,
) TourService {
	return &tourService{
		tours:      tours,
		assignment: assignment,
		txManager:  txManager,
		logger:     logger,
	}
}

func (s *tourService) Create(ctx context.Context, input CreateTourInput) (*entity.Tour, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tour name is required", entity.ErrValidation)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", entity.ErrValidation)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", entity.ErrValidation)
	}

	status := input.Status
	if status == "" {
		status = entity.TourPlanned
	}
	// A tour cannot be born active or terminal; vehicle linking and
	// activation are separate steps.
	if status != entity.TourPlanned && status != entity.TourConfirmed {
		return nil, fmt.Errorf("%w: new tours must be planned or confirmed", entity.ErrValidation)
	}

	now := time.Now().UTC()
	t := &entity.Tour{
		ID:              uuid.NewString(),
		Reference:       input.Reference,
		Name:            input.Name,
		Supplier:        input.Supplier,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          status,
		EstimatedKm:     input.EstimatedKm,
		TrailerRequired: input.TrailerRequired,
		Pax:             input.Pax,
		Itinerary:       input.Itinerary,
		Instructions:    input.Instructions,
		Notes:           input.Notes,
		CreatedBy:       input.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.tours.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("Tour created",
		zap.String("tour_id", t.ID),
		zap.String("name", t.Name),
		zap.String("status", string(t.Status)))
	return t, nil
}

func (s *tourService) Get(ctx context.Context, id string) (*entity.Tour, error) {
	return s.tours.GetByID(ctx, id)
}

func (s *tourService) List(ctx context.Context, status entity.TourStatus) ([]*entity.Tour, error) {
	return s.tours.List(ctx, status)
}

func (s *tourService) Update(ctx context.Context, id string, input UpdateTourInput) (*entity.Tour, error) {
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Terminal tours stay frozen apart from operator notes.
	if t.Status.IsTerminal() {
		if input.Notes == nil || hasNonNoteChanges(input) {
			return nil, fmt.Errorf("%w: tour %s is %s", entity.ErrConflict, id, t.Status)
		}
		t.Notes = *input.Notes
		t.UpdatedAt = time.Now().UTC()
		if err := s.tours.Update(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	}

	if input.Reference != nil {
		t.Reference = *input.Reference
	}
	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Supplier != nil {
		t.Supplier = *input.Supplier
	}
	if input.StartDate != nil {
		t.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = *input.EndDate
	}
	if input.EstimatedKm != nil {
		t.EstimatedKm = *input.EstimatedKm
	}
	if input.TrailerRequired != nil {
		t.TrailerRequired = *input.TrailerRequired
	}
	if input.Pax != nil {
		t.Pax = *input.Pax
	}
	if input.Itinerary != nil {
		t.Itinerary = *input.Itinerary
	}
	if input.Instructions != nil {
		t.Instructions = *input.Instructions
	}
	if input.Notes != nil {
		t.Notes = *input.Notes
	}
	if t.EndDate.Before(t.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", entity.ErrValidation)
	}

	previous := t.Status
	if input.Status != nil && *input.Status != previous {
		if err := s.applyStatusChange(ctx, t, *input.Status); err != nil {
			return nil, err
		}
	}

	t.UpdatedAt = time.Now().UTC()
	if err := s.tours.Update(ctx, t); err != nil {
		return nil, err
	}

	if t.Status != previous {
		s.logger.Info("Tour status changed",
			zap.String("tour_id", t.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(t.Status)))
	}
	return t, nil
}

// applyStatusChange validates the requested status and moves the linked
// vehicle's lifecycle in step.
func (s *tourService) applyStatusChange(ctx context.Context, t *entity.Tour, next entity.TourStatus) error {
	if next == entity.TourCancelled {
		t.Status = entity.TourCancelled
		if t.VehicleID != "" {
			if err := s.tours.Update(ctx, t); err != nil {
				return err
			}
			return s.assignment.ReleaseVehicle(ctx, t.VehicleID)
		}
		return nil
	}

	fromOrder, ok := tourStatusOrder[t.Status]
	toOrder, valid := tourStatusOrder[next]
	if !ok || !valid || toOrder != fromOrder+1 {
		return fmt.Errorf("%w: cannot move tour from %s to %s", entity.ErrConflict, t.Status, next)
	}

	switch next {
	case entity.TourActive:
		t.Status = next
		return s.assignment.ActivateTourVehicle(ctx, t)
	case entity.TourCompleted:
		t.Status = next
		if t.VehicleID != "" {
			if err := s.tours.Update(ctx, t); err != nil {
				return err
			}
			return s.assignment.ReleaseVehicle(ctx, t.VehicleID)
		}
	default:
		t.Status = next
	}
	return nil
}

func (s *tourService) Delete(ctx context.Context, id string) error {
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == entity.TourActive {
		return fmt.Errorf("%w: active tours cannot be deleted", entity.ErrConflict)
	}

	vehicleID := t.VehicleID
	if err := s.tours.Delete(ctx, id); err != nil {
		return err
	}
	if vehicleID != "" {
		if err := s.assignment.ReleaseVehicle(ctx, vehicleID); err != nil {
			return err
		}
	}

	s.logger.Info("Tour deleted", zap.String("tour_id", id))
	return nil
}

func hasNonNoteChanges(input UpdateTourInput) bool {
	return input.Reference != nil || input.Name != nil || input.Supplier != nil ||
		input.StartDate != nil || input.EndDate != nil || input.Status != nil ||
		input.EstimatedKm != nil || input.TrailerRequired != nil || input.Pax != nil ||
		input.Itinerary != nil || input.Instructions != nil
}
