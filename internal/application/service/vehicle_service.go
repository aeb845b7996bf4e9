package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/port"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/lifecycle"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/maintenance"
	"github.com/YEYOLABS/boundless-fleet/pkg/locks"
	"github.com/YEYOLABS/boundless-fleet/pkg/utils"
)

// RegisterVehicleInput carries the fields needed to register a fleet
// asset.
type RegisterVehicleInput struct {
	Model          string
	LicenceNumber  string
	ModelYear      int
	TrailerID      string
	TrailerModel   string
	TrailerLicence string
	Odometer       int64
	Intervals      entity.IntervalCatalog
	OrganisationID string
	SortOrder      int
}

// UpdateVehicleInput carries the mutable vehicle fields. Nil pointers
// leave the stored value untouched.
type UpdateVehicleInput struct {
	Model          *string
	LicenceNumber  *string
	ModelYear      *int
	TrailerID      *string
	TrailerModel   *string
	TrailerLicence *string
	LatestOdometer *int64
	Intervals      *entity.IntervalCatalog
	SortOrder      *int
}

// VehicleHealth pairs a vehicle with its computed maintenance snapshot.
type VehicleHealth struct {
	Vehicle  *entity.Vehicle       `json:"vehicle"`
	Snapshot *maintenance.Snapshot `json:"health"`
}

// VehicleService manages fleet asset records and their maintenance
// health.
type VehicleService interface {
	Register(ctx context.Context, input RegisterVehicleInput) (*entity.Vehicle, error)
	Get(ctx context.Context, id string) (*entity.Vehicle, error)
	List(ctx context.Context, organisationID string) ([]*entity.Vehicle, error)

	// Update applies field changes. An odometer update that pushes any
	// indicator into red also flags the vehicle for maintenance.
	Update(ctx context.Context, id string, input UpdateVehicleInput) (*entity.Vehicle, error)

	// Health computes the maintenance snapshot for one vehicle.
	Health(ctx context.Context, id string) (*VehicleHealth, error)

	// FleetHealth computes snapshots for the whole fleet, in the
	// operator's configured sort order.
	FleetHealth(ctx context.Context, organisationID string) ([]*VehicleHealth, error)

	// RecordService resets the reference odometer to the current reading
	// and returns a maintenance_required vehicle to ready.
	RecordService(ctx context.Context, id string) (*entity.Vehicle, error)
}

type vehicleService struct {
	vehicles  port.VehicleRepository
	vehicleMu *locks.KeyedMutex
	logger    *zap.Logger
}

// NewVehicleService creates a new VehicleService. vehicleMu must be the
// same instance the assignment service uses: odometer updates and
// assignment both rewrite the vehicle row, so they serialize on one
// per-vehicle lock.
func NewVehicleService(vehicles port.VehicleRepository, vehicleMu *locks.KeyedMutex, logger *zap.Logger) VehicleService {
	return &vehicleService{
		vehicles:  vehicles,
		vehicleMu: vehicleMu,
		logger:    logger,
	}
}

func (s *vehicleService) Register(ctx context.Context, input RegisterVehicleInput) (*entity.Vehicle, error) {
	if input.Model == "" || input.LicenceNumber == "" {
		return nil, fmt.Errorf("%w: model and licence number are required", entity.ErrValidation)
	}
	if err := utils.ValidateOdometerKm(input.Odometer); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if err := validateIntervals(input.Intervals); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	v := &entity.Vehicle{
		ID:             uuid.NewString(),
		Model:          input.Model,
		LicenceNumber:  input.LicenceNumber,
		ModelYear:      input.ModelYear,
		TrailerID:      input.TrailerID,
		TrailerModel:   input.TrailerModel,
		TrailerLicence: input.TrailerLicence,
		Odometer:       input.Odometer,
		LatestOdometer: input.Odometer,
		Intervals:      input.Intervals,
		Status:         entity.VehicleReady,
		OrganisationID: input.OrganisationID,
		SortOrder:      input.SortOrder,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Vehicle registered",
		zap.String("vehicle_id", v.ID),
		zap.String("licence", v.LicenceNumber))
	return v, nil
}

func (s *vehicleService) Get(ctx context.Context, id string) (*entity.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

func (s *vehicleService) List(ctx context.Context, organisationID string) ([]*entity.Vehicle, error) {
	return s.vehicles.List(ctx, organisationID)
}

func (s *vehicleService) Update(ctx context.Context, id string, input UpdateVehicleInput) (*entity.Vehicle, error) {
	s.vehicleMu.Lock(id)
	defer s.vehicleMu.Unlock(id)

	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == entity.VehicleDecommissioned || v.Status == entity.VehicleOutOfService {
		return nil, fmt.Errorf("%w: vehicle %s is %s", entity.ErrConflict, id, v.Status)
	}

	if input.Model != nil {
		v.Model = *input.Model
	}
	if input.LicenceNumber != nil {
		v.LicenceNumber = *input.LicenceNumber
	}
	if input.ModelYear != nil {
		v.ModelYear = *input.ModelYear
	}
	if input.TrailerID != nil {
		v.TrailerID = *input.TrailerID
	}
	if input.TrailerModel != nil {
		v.TrailerModel = *input.TrailerModel
	}
	if input.TrailerLicence != nil {
		v.TrailerLicence = *input.TrailerLicence
	}
	if input.SortOrder != nil {
		v.SortOrder = *input.SortOrder
	}
	if input.Intervals != nil {
		if err := validateIntervals(*input.Intervals); err != nil {
			return nil, err
		}
		v.Intervals = *input.Intervals
	}
	if input.LatestOdometer != nil {
		v.LatestOdometer = *input.LatestOdometer
	}
	if err := v.ValidateOdometer(); err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now().UTC()

	snap, err := maintenance.NewSnapshot(v)
	if err != nil {
		return nil, err
	}
	if snap.WorstColor() == maintenance.Red && v.Status == entity.VehicleReady {
		machine, err := lifecycle.NewVehicleMachine(v.Status)
		if err != nil {
			return nil, err
		}
		if err := machine.Fire(ctx, lifecycle.TriggerFlagMaintenance); err == nil {
			v.Status = machine.State()
			s.logger.Warn("Vehicle flagged for maintenance",
				zap.String("vehicle_id", v.ID),
				zap.Int64("odometer", v.CurrentReading()))
		}
	}

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *vehicleService) Health(ctx context.Context, id string) (*VehicleHealth, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := maintenance.NewSnapshot(v)
	if err != nil {
		return nil, err
	}
	return &VehicleHealth{Vehicle: v, Snapshot: snap}, nil
}

func (s *vehicleService) FleetHealth(ctx context.Context, organisationID string) ([]*VehicleHealth, error) {
	vehicles, err := s.vehicles.List(ctx, organisationID)
	if err != nil {
		return nil, err
	}

	out := make([]*VehicleHealth, 0, len(vehicles))
	for _, v := range vehicles {
		snap, err := maintenance.NewSnapshot(v)
		if err != nil {
			return nil, fmt.Errorf("vehicle %s: %w", v.ID, err)
		}
		out = append(out, &VehicleHealth{Vehicle: v, Snapshot: snap})
	}
	return out, nil
}

func (s *vehicleService) RecordService(ctx context.Context, id string) (*entity.Vehicle, error) {
	s.vehicleMu.Lock(id)
	defer s.vehicleMu.Unlock(id)

	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v.Status == entity.VehicleMaintenanceRequired {
		machine, err := lifecycle.NewVehicleMachine(v.Status)
		if err != nil {
			return nil, err
		}
		if err := machine.Fire(ctx, lifecycle.TriggerServiceCompleted); err != nil {
			return nil, fmt.Errorf("%w: service completion from %s", entity.ErrConflict, v.Status)
		}
		v.Status = machine.State()
	}

	v.Odometer = v.CurrentReading()
	v.LatestOdometer = v.Odometer
	v.UpdatedAt = time.Now().UTC()

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Service recorded",
		zap.String("vehicle_id", v.ID),
		zap.Int64("reference_odometer", v.Odometer))
	return v, nil
}

func validateIntervals(c entity.IntervalCatalog) error {
	for _, km := range []int64{
		c.TyresKm, c.AlignmentBalancingKm, c.ServiceKm,
		c.TurboExchangeKm, c.HandbrakeShoesKm, c.ClutchReplacementKm,
		c.TrailerBrakesKm,
	} {
		if km < 0 {
			return fmt.Errorf("%w: maintenance intervals must be non-negative", entity.ErrValidation)
		}
	}
	return nil
}
