package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/maintenance"
	"github.com/YEYOLABS/boundless-fleet/pkg/locks"
)

func newVehicleFixture(t *testing.T) (*fakeVehicleRepo, VehicleService) {
	t.Helper()
	repo := newFakeVehicleRepo()
	return repo, NewVehicleService(repo, locks.NewKeyedMutex(), testLogger())
}

func TestRegisterVehicle(t *testing.T) {
	_, svc := newVehicleFixture(t)

	v, err := svc.Register(context.Background(), RegisterVehicleInput{
		Model:         "Scania Touring HD",
		LicenceNumber: "CA 123-456",
		ModelYear:     2022,
		Odometer:      120000,
		Intervals:     entity.IntervalCatalog{ServiceKm: 15000, TyresKm: 60000},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, entity.VehicleReady, v.Status)
	assert.Equal(t, int64(120000), v.Odometer)
	assert.Equal(t, int64(120000), v.LatestOdometer)
}

func TestRegisterVehicleValidation(t *testing.T) {
	_, svc := newVehicleFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterVehicleInput{LicenceNumber: "CA 1"})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = svc.Register(ctx, RegisterVehicleInput{Model: "M", LicenceNumber: "CA 1", Odometer: -1})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = svc.Register(ctx, RegisterVehicleInput{
		Model: "M", LicenceNumber: "CA 1",
		Intervals: entity.IntervalCatalog{ServiceKm: -100},
	})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestUpdateOdometerFlagsMaintenance(t *testing.T) {
	repo, svc := newVehicleFixture(t)

	v, err := svc.Register(context.Background(), RegisterVehicleInput{
		Model: "MAN Lion's Coach", LicenceNumber: "CA 9",
		Odometer:  100000,
		Intervals: entity.IntervalCatalog{ServiceKm: 10000},
	})
	require.NoError(t, err)

	// 9,700 km since service leaves 3% of the interval.
	reading := int64(109700)
	updated, err := svc.Update(context.Background(), v.ID, UpdateVehicleInput{LatestOdometer: &reading})
	require.NoError(t, err)
	assert.Equal(t, entity.VehicleMaintenanceRequired, updated.Status)

	stored, err := repo.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VehicleMaintenanceRequired, stored.Status)
}

func TestUpdateOdometerRejectsRegression(t *testing.T) {
	_, svc := newVehicleFixture(t)

	v, err := svc.Register(context.Background(), RegisterVehicleInput{
		Model: "M", LicenceNumber: "CA 2", Odometer: 50000,
		Intervals: entity.IntervalCatalog{ServiceKm: 15000},
	})
	require.NoError(t, err)

	reading := int64(49000)
	_, err = svc.Update(context.Background(), v.ID, UpdateVehicleInput{LatestOdometer: &reading})
	assert.ErrorIs(t, err, entity.ErrValidation)

	negative := int64(-5)
	_, err = svc.Update(context.Background(), v.ID, UpdateVehicleInput{LatestOdometer: &negative})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestRecordServiceResetsReference(t *testing.T) {
	_, svc := newVehicleFixture(t)

	v, err := svc.Register(context.Background(), RegisterVehicleInput{
		Model: "M", LicenceNumber: "CA 3", Odometer: 100000,
		Intervals: entity.IntervalCatalog{ServiceKm: 10000},
	})
	require.NoError(t, err)

	reading := int64(109700)
	updated, err := svc.Update(context.Background(), v.ID, UpdateVehicleInput{LatestOdometer: &reading})
	require.NoError(t, err)
	require.Equal(t, entity.VehicleMaintenanceRequired, updated.Status)

	serviced, err := svc.RecordService(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VehicleReady, serviced.Status)
	assert.Equal(t, int64(109700), serviced.Odometer)

	health, err := svc.Health(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, maintenance.Green, health.Snapshot.Service.Color)
	assert.Equal(t, int64(10000), health.Snapshot.Service.RemainingKm)
}

func TestUpdateRefusedOnTerminalVehicle(t *testing.T) {
	repo, svc := newVehicleFixture(t)

	require.NoError(t, repo.Create(context.Background(), &entity.Vehicle{
		ID: "v1", Model: "M", LicenceNumber: "L", Status: entity.VehicleDecommissioned,
	}))

	model := "New Model"
	_, err := svc.Update(context.Background(), "v1", UpdateVehicleInput{Model: &model})
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestFleetHealth(t *testing.T) {
	repo, svc := newVehicleFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Vehicle{
		ID: "healthy", Model: "M", LicenceNumber: "L1", Status: entity.VehicleReady,
		Odometer: 0, LatestOdometer: 1000,
		Intervals: entity.IntervalCatalog{ServiceKm: 10000},
	}))
	require.NoError(t, repo.Create(ctx, &entity.Vehicle{
		ID: "due", Model: "M", LicenceNumber: "L2", Status: entity.VehicleReady,
		Odometer: 0, LatestOdometer: 9600,
		Intervals: entity.IntervalCatalog{ServiceKm: 10000},
	}))

	health, err := svc.FleetHealth(ctx, "")
	require.NoError(t, err)
	require.Len(t, health, 2)

	colors := make(map[string]maintenance.Color)
	for _, h := range health {
		colors[h.Vehicle.ID] = h.Snapshot.Service.Color
	}
	assert.Equal(t, maintenance.Green, colors["healthy"])
	assert.Equal(t, maintenance.Red, colors["due"])
}
