package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/pkg/database"
)

// VehicleRepository handles vehicle database operations.
type VehicleRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewVehicleRepository creates a new vehicle repository.
func NewVehicleRepository(db *database.DB, logger *zap.Logger) *VehicleRepository {
	return &VehicleRepository{db: db, logger: logger}
}

const vehicleColumns = `
	id, model, licence_number, model_year,
	trailer_id, trailer_model, trailer_licence,
	odometer, latest_odometer,
	tyres_interval_km, alignment_interval_km, service_interval_km,
	turbo_interval_km, handbrake_interval_km, clutch_interval_km,
	trailer_brakes_interval_km,
	status, organisation_id,
	current_driver_id, current_driver_name, assigned_by_id, assigned_by_name,
	sort_order, created_at, updated_at`

// Create inserts a new vehicle record.
func (r *VehicleRepository) Create(ctx context.Context, v *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		v.ID, v.Model, v.LicenceNumber, v.ModelYear,
		v.TrailerID, v.TrailerModel, v.TrailerLicence,
		v.Odometer, v.LatestOdometer,
		v.Intervals.TyresKm, v.Intervals.AlignmentBalancingKm, v.Intervals.ServiceKm,
		v.Intervals.TurboExchangeKm, v.Intervals.HandbrakeShoesKm, v.Intervals.ClutchReplacementKm,
		v.Intervals.TrailerBrakesKm,
		v.Status, v.OrganisationID,
		v.CurrentDriverID, v.CurrentDriverName, v.AssignedByID, v.AssignedByName,
		v.SortOrder, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create vehicle", zap.Error(err))
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

// GetByID fetches one vehicle.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = ?`

	v, err := scanVehicle(exec(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle %s", entity.ErrNotFound, id)
		}
		r.logger.Error("Failed to get vehicle", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

// List returns the fleet, optionally scoped to an organisation, in the
// operator's configured sort order.
func (r *VehicleRepository) List(ctx context.Context, organisationID string) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	var args []any
	if organisationID != "" {
		query += ` WHERE organisation_id = ?`
		args = append(args, organisationID)
	}
	query += ` ORDER BY sort_order, id`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list vehicles", zap.Error(err))
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()
	return collectVehicles(rows)
}

// Update persists all mutable vehicle fields.
func (r *VehicleRepository) Update(ctx context.Context, v *entity.Vehicle) error {
	query := `
		UPDATE vehicles SET
			model = ?, licence_number = ?, model_year = ?,
			trailer_id = ?, trailer_model = ?, trailer_licence = ?,
			odometer = ?, latest_odometer = ?,
			tyres_interval_km = ?, alignment_interval_km = ?, service_interval_km = ?,
			turbo_interval_km = ?, handbrake_interval_km = ?, clutch_interval_km = ?,
			trailer_brakes_interval_km = ?,
			status = ?, organisation_id = ?,
			current_driver_id = ?, current_driver_name = ?,
			assigned_by_id = ?, assigned_by_name = ?,
			sort_order = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		v.Model, v.LicenceNumber, v.ModelYear,
		v.TrailerID, v.TrailerModel, v.TrailerLicence,
		v.Odometer, v.LatestOdometer,
		v.Intervals.TyresKm, v.Intervals.AlignmentBalancingKm, v.Intervals.ServiceKm,
		v.Intervals.TurboExchangeKm, v.Intervals.HandbrakeShoesKm, v.Intervals.ClutchReplacementKm,
		v.Intervals.TrailerBrakesKm,
		v.Status, v.OrganisationID,
		v.CurrentDriverID, v.CurrentDriverName,
		v.AssignedByID, v.AssignedByName,
		v.SortOrder, v.UpdatedAt,
		v.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update vehicle", zap.String("id", v.ID), zap.Error(err))
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: vehicle %s", entity.ErrNotFound, v.ID)
	}
	return nil
}

// GetByCurrentDriver returns vehicles currently assigned to the driver.
func (r *VehicleRepository) GetByCurrentDriver(ctx context.Context, driverID string) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE current_driver_id = ?`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, driverID)
	if err != nil {
		r.logger.Error("Failed to query vehicles by driver", zap.String("driver_id", driverID), zap.Error(err))
		return nil, fmt.Errorf("failed to query vehicles by driver: %w", err)
	}
	defer rows.Close()
	return collectVehicles(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(
		&v.ID, &v.Model, &v.LicenceNumber, &v.ModelYear,
		&v.TrailerID, &v.TrailerModel, &v.TrailerLicence,
		&v.Odometer, &v.LatestOdometer,
		&v.Intervals.TyresKm, &v.Intervals.AlignmentBalancingKm, &v.Intervals.ServiceKm,
		&v.Intervals.TurboExchangeKm, &v.Intervals.HandbrakeShoesKm, &v.Intervals.ClutchReplacementKm,
		&v.Intervals.TrailerBrakesKm,
		&v.Status, &v.OrganisationID,
		&v.CurrentDriverID, &v.CurrentDriverName, &v.AssignedByID, &v.AssignedByName,
		&v.SortOrder, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVehicles(rows *sql.Rows) ([]*entity.Vehicle, error) {
	var out []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}
	return out, nil
}
