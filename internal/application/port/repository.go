// Package port defines the persistence interfaces the application
// services depend on. Implementations live in internal/repository;
// tests substitute in-memory fakes.
package port

import (
	"context"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

// VehicleRepository defines persistence operations for Vehicle.
type VehicleRepository interface {
	Create(ctx context.Context, v *entity.Vehicle) error
	GetByID(ctx context.Context, id string) (*entity.Vehicle, error)
	List(ctx context.Context, organisationID string) ([]*entity.Vehicle, error)
	Update(ctx context.Context, v *entity.Vehicle) error
	// GetByCurrentDriver returns vehicles whose CurrentDriverID matches
	// driverID, used for the double-driver assignment guard.
	GetByCurrentDriver(ctx context.Context, driverID string) ([]*entity.Vehicle, error)
}

// DriverRepository defines persistence operations for Driver.
type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Driver, error)
	List(ctx context.Context, organisationID string) ([]*entity.Driver, error)
}

// TourRepository defines persistence operations for Tour.
type TourRepository interface {
	Create(ctx context.Context, t *entity.Tour) error
	GetByID(ctx context.Context, id string) (*entity.Tour, error)
	List(ctx context.Context, status entity.TourStatus) ([]*entity.Tour, error)
	Update(ctx context.Context, t *entity.Tour) error
	Delete(ctx context.Context, id string) error
	// ListByVehicle returns every non-cancelled tour referencing the
	// vehicle.
	ListByVehicle(ctx context.Context, vehicleID string) ([]*entity.Tour, error)
}

// FloatRepository defines persistence operations for Float.
type FloatRepository interface {
	Create(ctx context.Context, f *entity.Float) error
	GetByID(ctx context.Context, id string) (*entity.Float, error)
	List(ctx context.Context) ([]*entity.Float, error)
	Update(ctx context.Context, f *entity.Float) error
	// GetOpenByTour returns the open float for a tour, or nil when the
	// tour has none.
	GetOpenByTour(ctx context.Context, tourID string) (*entity.Float, error)
	// ListOpenByDriver returns open floats issued to the given driver,
	// used by the decommission guard and the timeline.
	ListOpenByDriver(ctx context.Context, driverID string) ([]*entity.Float, error)
}

// ExpenseRepository defines persistence operations for Expense.
type ExpenseRepository interface {
	Create(ctx context.Context, e *entity.Expense) error
	GetByID(ctx context.Context, id string) (*entity.Expense, error)
	List(ctx context.Context) ([]*entity.Expense, error)
	ListByFloat(ctx context.Context, floatID string) ([]*entity.Expense, error)
	Update(ctx context.Context, e *entity.Expense) error
	Delete(ctx context.Context, id string) error
}

// IssueRepository defines persistence operations for Issue.
type IssueRepository interface {
	Create(ctx context.Context, i *entity.Issue) error
	GetByID(ctx context.Context, id string) (*entity.Issue, error)
	List(ctx context.Context) ([]*entity.Issue, error)
	ListOpenByVehicle(ctx context.Context, vehicleID string) ([]*entity.Issue, error)
	Update(ctx context.Context, i *entity.Issue) error
}

// AssignmentHistoryRepository records the durable assignment audit
// trail.
type AssignmentHistoryRepository interface {
	Create(ctx context.Context, rec *entity.AssignmentRecord) error
	ListByVehicle(ctx context.Context, vehicleID string) ([]*entity.AssignmentRecord, error)
}

// TransactionManager runs fn atomically: every repository call made
// with the ctx it passes joins the same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
