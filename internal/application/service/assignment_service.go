package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/port"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/lifecycle"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/maintenance"
	"github.com/YEYOLABS/boundless-fleet/pkg/locks"
)

// AssignedBy identifies the operator performing an assignment, for the
// audit trail.
type AssignedBy struct {
	ID   string
	Name string
}

// AssignmentService enforces the vehicle/driver/tour exclusivity
// invariant and drives the vehicle lifecycle.
type AssignmentService interface {
	// Assign binds a driver to a ready vehicle. Assignment alone does
	// not start a tour; the vehicle stays ready until an active tour is
	// linked.
	Assign(ctx context.Context, vehicleID, driverID string, by AssignedBy) (*entity.Vehicle, error)

	// LinkTour attaches a vehicle (which must already have a driver) to
	// a tour. If the tour is active the vehicle moves to on_tour.
	LinkTour(ctx context.Context, tourID, vehicleID string) (*entity.Tour, error)

	// UnlinkTour detaches the tour's vehicle and returns it to ready
	// when no other active tour references it.
	UnlinkTour(ctx context.Context, tourID string) (*entity.Tour, error)

	// ReleaseVehicle returns an on_tour vehicle to ready when no active
	// tour references it any more. Used after tour completion,
	// cancellation and deletion.
	ReleaseVehicle(ctx context.Context, vehicleID string) error

	// ActivateTourVehicle moves the tour's vehicle to on_tour when the
	// tour transitions to active.
	ActivateTourVehicle(ctx context.Context, tour *entity.Tour) error

	// Decommission retires a vehicle permanently. Refused while open
	// tours or open floats still reference it.
	Decommission(ctx context.Context, vehicleID string) (*entity.Vehicle, error)

	// MarkIssue flips a vehicle into the issue state when a critical
	// defect is reported against it.
	MarkIssue(ctx context.Context, vehicleID string) error

	// ClearIssue returns a vehicle from the issue state to ready once
	// no open critical issue remains.
	ClearIssue(ctx context.Context, vehicleID string) error

	// History returns the assignment audit trail for a vehicle.
	History(ctx context.Context, vehicleID string) ([]*entity.AssignmentRecord, error)

	// ListDrivers returns the driver roster available for assignment.
	ListDrivers(ctx context.Context, organisationID string) ([]*entity.Driver, error)
}

type assignmentService struct {
	vehicles  port.VehicleRepository
	drivers   port.DriverRepository
	tours     port.TourRepository
	floats    port.FloatRepository
	issues    port.IssueRepository
	history   port.AssignmentHistoryRepository
	txManager port.TransactionManager
	vehicleMu *locks.KeyedMutex
	logger    *zap.Logger
}

// NewAssignmentService creates a new AssignmentService. vehicleMu is
// shared with the vehicle service so every vehicle mutation in the
// process serializes on the same per-vehicle lock.
func NewAssignmentService(
	vehicles port.VehicleRepository,
	drivers port.DriverRepository,
	tours port.TourRepository,
	floats port.FloatRepository,
	issues port.IssueRepository,
	history port.AssignmentHistoryRepository,
	txManager port.TransactionManager,
	vehicleMu *locks.KeyedMutex,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		vehicles:  vehicles,
		drivers:   drivers,
		tours:     tours,
		floats:    floats,
		issues:    issues,
		history:   history,
		txManager: txManager,
		vehicleMu: vehicleMu,
		logger:    logger,
	}
}

func (s *assignmentService) Assign(ctx context.Context, vehicleID, driverID string, by AssignedBy) (*entity.Vehicle, error) {
	if vehicleID == "" || driverID == "" {
		return nil, fmt.Errorf("%w: vehicle id and driver id are required", entity.ErrValidation)
	}

	s.vehicleMu.Lock(vehicleID)
	defer s.vehicleMu.Unlock(vehicleID)

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if vehicle.Status != entity.VehicleReady {
		return nil, fmt.Errorf("%w: vehicle %s is %s, not assignable", entity.ErrConflict, vehicleID, vehicle.Status)
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	// One driver must not operate two vehicles at the same time.
	held, err := s.vehicles.GetByCurrentDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	for _, other := range held {
		if other.ID != vehicleID && other.Status == entity.VehicleOnTour {
			return nil, fmt.Errorf("%w: driver %s is already on tour with vehicle %s",
				entity.ErrConflict, driverID, other.ID)
		}
	}

	open, err := s.issues.ListOpenByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	for _, issue := range open {
		if issue.BlocksAssignment() {
			return nil, fmt.Errorf("%w: vehicle %s has an open critical issue", entity.ErrBlocked, vehicleID)
		}
	}

	snap, err := maintenance.NewSnapshot(vehicle)
	if err != nil {
		return nil, err
	}
	if snap.WorstColor() == maintenance.Red {
		return nil, fmt.Errorf("%w: vehicle %s is in critical maintenance health", entity.ErrBlocked, vehicleID)
	}

	now := time.Now().UTC()
	vehicle.CurrentDriverID = driver.ID
	vehicle.CurrentDriverName = driver.Name
	vehicle.AssignedByID = by.ID
	vehicle.AssignedByName = by.Name
	vehicle.UpdatedAt = now

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.vehicles.Update(ctx, vehicle); err != nil {
			return err
		}
		return s.history.Create(ctx, &entity.AssignmentRecord{
			VehicleID:      vehicle.ID,
			DriverID:       driver.ID,
			DriverName:     driver.Name,
			AssignedByID:   by.ID,
			AssignedByName: by.Name,
			AssignedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Driver assigned to vehicle",
		zap.String("vehicle_id", vehicle.ID),
		zap.String("driver_id", driver.ID),
		zap.String("assigned_by", by.ID))
	return vehicle, nil
}

func (s *assignmentService) LinkTour(ctx context.Context, tourID, vehicleID string) (*entity.Tour, error) {
	if tourID == "" || vehicleID == "" {
		return nil, fmt.Errorf("%w: tour id and vehicle id are required", entity.ErrValidation)
	}

	s.vehicleMu.Lock(vehicleID)
	defer s.vehicleMu.Unlock(vehicleID)

	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: tour %s is %s", entity.ErrConflict, tourID, tour.Status)
	}

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	// Assignment precedes scheduling: the vehicle needs a driver before
	// it can be put on a tour.
	if vehicle.CurrentDriverID == "" {
		return nil, fmt.Errorf("%w: vehicle %s has no driver assigned", entity.ErrConflict, vehicleID)
	}
	if vehicle.Status != entity.VehicleReady {
		return nil, fmt.Errorf("%w: vehicle %s is %s", entity.ErrConflict, vehicleID, vehicle.Status)
	}
	if tour.TrailerRequired && !vehicle.HasTrailer() {
		return nil, fmt.Errorf("%w: tour %s requires a trailer", entity.ErrConflict, tourID)
	}

	tour.VehicleID = vehicle.ID
	tour.VehicleName = vehicle.LicenceNumber
	tour.DriverID = vehicle.CurrentDriverID
	tour.DriverName = vehicle.CurrentDriverName
	tour.UpdatedAt = time.Now().UTC()

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tours.Update(ctx, tour); err != nil {
			return err
		}
		if tour.Status == entity.TourActive {
			return s.transitionLocked(ctx, vehicle, lifecycle.TriggerStartTour)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vehicle linked to tour",
		zap.String("tour_id", tour.ID),
		zap.String("vehicle_id", vehicle.ID))
	return tour, nil
}

func (s *assignmentService) UnlinkTour(ctx context.Context, tourID string) (*entity.Tour, error) {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour.VehicleID == "" {
		return tour, nil
	}

	vehicleID := tour.VehicleID
	s.vehicleMu.Lock(vehicleID)
	defer s.vehicleMu.Unlock(vehicleID)

	tour.VehicleID = ""
	tour.VehicleName = ""
	tour.UpdatedAt = time.Now().UTC()

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tours.Update(ctx, tour); err != nil {
			return err
		}
		return s.releaseLocked(ctx, vehicleID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vehicle unlinked from tour",
		zap.String("tour_id", tour.ID),
		zap.String("vehicle_id", vehicleID))
	return tour, nil
}

func (s *assignmentService) ReleaseVehicle(ctx context.Context, vehicleID string) error {
	if vehicleID == "" {
		return nil
	}
	s.vehicleMu.Lock(vehicleID)
	defer s.vehicleMu.Unlock(vehicleID)
	return s.releaseLocked(ctx, vehicleID)
}

// releaseLocked returns an on_tour vehicle to ready unless another
// active tour still references it. Caller holds the vehicle lock.
func (s *assignmentService) releaseLocked(ctx context.Context, vehicleID string) error {
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.Status != entity.VehicleOnTour {
		return nil
	}

	tours, err := s.tours.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	for _, t := range tours {
		if t.Status == entity.TourActive {
			return nil
		}
	}

	return s.transitionLocked(ctx, vehicle, lifecycle.TriggerEndTour)
}

func (s *assignmentService) ActivateTourVehicle(ctx context.Context, tour *entity.Tour) error {
	if tour.VehicleID == "" {
		return fmt.Errorf("%w: an active tour must reference a vehicle", entity.ErrConflict)
	}

	s.vehicleMu.Lock(tour.VehicleID)
	defer s.vehicleMu.Unlock(tour.VehicleID)

	vehicle, err := s.vehicles.GetByID(ctx, tour.VehicleID)
	if err != nil {
		return err
	}
	if vehicle.Status == entity.VehicleOnTour {
		return nil
	}
	return s.transitionLocked(ctx, vehicle, lifecycle.TriggerStartTour)
}

func (s *assignmentService) Decommission(ctx context.Context, vehicleID string) (*entity.Vehicle, error) {
	s.vehicleMu.Lock(vehicleID)
	defer s.vehicleMu.Unlock(vehicleID)

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	tours, err := s.tours.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	for _, t := range tours {
		if !t.Status.IsTerminal() {
			return nil, fmt.Errorf("%w: vehicle %s is referenced by open tour %s",
				entity.ErrConflict, vehicleID, t.ID)
		}
	}

	if vehicle.CurrentDriverID != "" {
		open, err := s.floats.ListOpenByDriver(ctx, vehicle.CurrentDriverID)
		if err != nil {
			return nil, err
		}
		if len(open) > 0 {
			return nil, fmt.Errorf("%w: driver %s still holds an open float",
				entity.ErrConflict, vehicle.CurrentDriverID)
		}
	}

	if err := s.transitionLocked(ctx, vehicle, lifecycle.TriggerDecommission); err != nil {
		return nil, err
	}

	s.logger.Info("Vehicle decommissioned", zap.String("vehicle_id", vehicleID))
	return vehicle, nil
}

func (s *assignmentService) MarkIssue(ctx context.Context, vehicleID string) error {
	s.vehicleMu.Lock(vehicleID)
	defer s.vehicleMu.Unlock(vehicleID)

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.Status == entity.VehicleIssue {
		return nil
	}
	return s.transitionLocked(ctx, vehicle, lifecycle.TriggerReportIssue)
}

func (s *assignmentService) ClearIssue(ctx context.Context, vehicleID string) error {
	s.vehicleMu.Lock(vehicleID)
	defer s.vehicleMu.Unlock(vehicleID)

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle.Status != entity.VehicleIssue {
		return nil
	}
	return s.transitionLocked(ctx, vehicle, lifecycle.TriggerResolveIssue)
}

func (s *assignmentService) History(ctx context.Context, vehicleID string) ([]*entity.AssignmentRecord, error) {
	return s.history.ListByVehicle(ctx, vehicleID)
}

func (s *assignmentService) ListDrivers(ctx context.Context, organisationID string) ([]*entity.Driver, error) {
	return s.drivers.List(ctx, organisationID)
}

// transitionLocked fires a lifecycle trigger and persists the new
// status. Caller holds the vehicle lock.
func (s *assignmentService) transitionLocked(ctx context.Context, vehicle *entity.Vehicle, trigger lifecycle.Trigger) error {
	machine, err := lifecycle.NewVehicleMachine(vehicle.Status)
	if err != nil {
		return err
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return fmt.Errorf("%w: %s from %s", entity.ErrConflict, trigger, vehicle.Status)
	}

	vehicle.Status = machine.State()
	vehicle.UpdatedAt = time.Now().UTC()
	return s.vehicles.Update(ctx, vehicle)
}
