package entity

import (
	"fmt"
	"time"
)

// VehicleStatus is the lifecycle status of a fleet asset.
type VehicleStatus string

const (
	VehicleReady               VehicleStatus = "ready"
	VehicleOnTour              VehicleStatus = "on_tour"
	VehicleMaintenanceRequired VehicleStatus = "maintenance_required"
	VehicleOutOfService        VehicleStatus = "out_of_service"
	VehicleIssue               VehicleStatus = "issue"
	VehicleDecommissioned      VehicleStatus = "decommissioned"
)

// IntervalCatalog holds the per-vehicle maintenance intervals in
// kilometres. A zero interval means the item is not configured and is
// never considered due.
type IntervalCatalog struct {
	TyresKm              int64 `json:"tyres"`
	AlignmentBalancingKm int64 `json:"alignment_balancing"`
	ServiceKm            int64 `json:"service"`
	TurboExchangeKm      int64 `json:"turbo_exchange"`
	HandbrakeShoesKm     int64 `json:"handbrake_shoes"`
	ClutchReplacementKm  int64 `json:"clutch_replacement"`
	TrailerBrakesKm      int64 `json:"trailer_brakes"`
}

// Vehicle represents a fleet asset. Odometer is the reference reading at
// the last recorded service point; LatestOdometer is the most recent
// known reading and falls back to Odometer when never updated.
type Vehicle struct {
	ID             string          `json:"id"`
	Model          string          `json:"model"`
	LicenceNumber  string          `json:"licence_number"`
	ModelYear      int             `json:"model_year"`
	TrailerID      string          `json:"trailer_id,omitempty"`
	TrailerModel   string          `json:"trailer_model,omitempty"`
	TrailerLicence string          `json:"trailer_licence,omitempty"`
	Odometer       int64           `json:"odometer"`
	LatestOdometer int64           `json:"latest_odometer"`
	Intervals      IntervalCatalog `json:"maintenance_intervals_km"`
	Status         VehicleStatus   `json:"status"`
	OrganisationID string          `json:"organisation_id"`

	CurrentDriverID   string `json:"current_driver_id,omitempty"`
	CurrentDriverName string `json:"current_driver_name,omitempty"`
	AssignedByID      string `json:"assigned_by_id,omitempty"`
	AssignedByName    string `json:"assigned_by_name,omitempty"`

	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTrailer reports whether a trailer is attached. Brake wear tracking
// is meaningless without one.
func (v *Vehicle) HasTrailer() bool {
	return v.TrailerID != ""
}

// CurrentReading returns the best known odometer value.
func (v *Vehicle) CurrentReading() int64 {
	if v.LatestOdometer > 0 {
		return v.LatestOdometer
	}
	return v.Odometer
}

// ValidateOdometer checks the odometer pair as a domain precondition:
// readings must be non-negative and the latest reading may not precede
// the reference reading.
func (v *Vehicle) ValidateOdometer() error {
	if v.Odometer < 0 || v.LatestOdometer < 0 {
		return fmt.Errorf("%w: odometer readings must be non-negative", ErrValidation)
	}
	if v.LatestOdometer > 0 && v.LatestOdometer < v.Odometer {
		return fmt.Errorf("%w: latest odometer %d is behind reference reading %d",
			ErrValidation, v.LatestOdometer, v.Odometer)
	}
	return nil
}

// AssignmentRecord is the durable audit trail row written whenever a
// driver is bound to a vehicle.
type AssignmentRecord struct {
	ID             int64     `json:"id"`
	VehicleID      string    `json:"vehicle_id"`
	DriverID       string    `json:"driver_id"`
	DriverName     string    `json:"driver_name"`
	AssignedByID   string    `json:"assigned_by_id"`
	AssignedByName string    `json:"assigned_by_name"`
	AssignedAt     time.Time `json:"assigned_at"`
}
