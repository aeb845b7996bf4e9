package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/port"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
	"github.com/YEYOLABS/boundless-fleet/internal/domain/maintenance"
)

// Board groups upcoming tours into the buckets the dispatch view shows.
// Cancelled tours are excluded entirely.
type Board struct {
	// PendingAssignment holds confirmed or active tours that still lack
	// both a vehicle and a driver.
	PendingAssignment []*entity.Tour `json:"pending_assignment"`
	// Planned holds draft tours not yet confirmed.
	Planned []*entity.Tour `json:"planned"`
}

// TimelineEntry pairs one vehicle with its upcoming tours, a derived
// maintenance snapshot, and the driver's open float if any. Snapshot and
// float are read-side projections recomputed on every call, never stored.
type TimelineEntry struct {
	Vehicle    *entity.Vehicle       `json:"vehicle"`
	DriverName string                `json:"driver_name"`
	Tours      []*entity.Tour        `json:"tours"`
	Health     *maintenance.Snapshot `json:"health"`
	OpenFloat  *entity.Float         `json:"open_float,omitempty"`
}

// ScheduleService is the read-side projection over the canonical
// entities. It holds no state of its own and never mutates anything.
type ScheduleService interface {
	Board(ctx context.Context) (*Board, error)
	// Timeline returns per-vehicle entries for tours starting within
	// windowDays of now. windowDays <= 0 falls back to 60.
	Timeline(ctx context.Context, organisationID string, now time.Time, windowDays int) ([]*TimelineEntry, error)
}

type scheduleService struct {
	vehicles port.VehicleRepository
	drivers  port.DriverRepository
	tours    port.TourRepository
	floats   port.FloatRepository
	logger   *zap.Logger
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	vehicles port.VehicleRepository,
	drivers port.DriverRepository,
	tours port.TourRepository,
	floats port.FloatRepository,
	logger *zap.Logger,
) ScheduleService {
	return &scheduleService{
		vehicles: vehicles,
		drivers:  drivers,
		tours:    tours,
		floats:   floats,
		logger:   logger,
	}
}

func (s *scheduleService) Board(ctx context.Context) (*Board, error) {
	tours, err := s.tours.List(ctx, "")
	if err != nil {
		return nil, err
	}

	board := &Board{
		PendingAssignment: []*entity.Tour{},
		Planned:           []*entity.Tour{},
	}
	for _, t := range tours {
		switch {
		case t.Status == entity.TourCancelled:
			continue
		case (t.Status == entity.TourConfirmed || t.Status == entity.TourActive) &&
			t.VehicleID == "" && t.DriverID == "":
			board.PendingAssignment = append(board.PendingAssignment, t)
		case t.Status == entity.TourPlanned:
			board.Planned = append(board.Planned, t)
		}
	}

	sortTours(board.PendingAssignment)
	sortTours(board.Planned)
	return board, nil
}

func (s *scheduleService) Timeline(ctx context.Context, organisationID string, now time.Time, windowDays int) ([]*TimelineEntry, error) {
	if windowDays <= 0 {
		windowDays = 60
	}
	horizon := now.AddDate(0, 0, windowDays)

	vehicles, err := s.vehicles.List(ctx, organisationID)
	if err != nil {
		return nil, err
	}
	tours, err := s.tours.List(ctx, "")
	if err != nil {
		return nil, err
	}

	byVehicle := make(map[string][]*entity.Tour)
	for _, t := range tours {
		if t.VehicleID == "" || t.Status == entity.TourCancelled {
			continue
		}
		if t.StartDate.Before(now) && t.Status != entity.TourActive {
			continue
		}
		if t.StartDate.After(horizon) {
			continue
		}
		byVehicle[t.VehicleID] = append(byVehicle[t.VehicleID], t)
	}

	sort.Slice(vehicles, func(i, j int) bool {
		if vehicles[i].SortOrder != vehicles[j].SortOrder {
			return vehicles[i].SortOrder < vehicles[j].SortOrder
		}
		return vehicles[i].ID < vehicles[j].ID
	})

	entries := make([]*TimelineEntry, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Status == entity.VehicleDecommissioned {
			continue
		}

		snap, err := maintenance.NewSnapshot(v)
		if err != nil {
			return nil, fmt.Errorf("vehicle %s: %w", v.ID, err)
		}

		upcoming := byVehicle[v.ID]
		sortTours(upcoming)
		if upcoming == nil {
			upcoming = []*entity.Tour{}
		}

		entry := &TimelineEntry{
			Vehicle:    v,
			DriverName: s.resolveDriverName(ctx, v, upcoming),
			Tours:      upcoming,
			Health:     snap,
		}

		if v.CurrentDriverID != "" {
			open, err := s.floats.ListOpenByDriver(ctx, v.CurrentDriverID)
			if err != nil {
				return nil, err
			}
			if len(open) > 0 {
				entry.OpenFloat = open[0]
			}
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// resolveDriverName applies the display fallback chain once, here, so
// no consumer re-implements it: the vehicle's assigned driver, then the
// next tour's driver, then a driver lookup, then "Unassigned".
func (s *scheduleService) resolveDriverName(ctx context.Context, v *entity.Vehicle, upcoming []*entity.Tour) string {
	if v.CurrentDriverName != "" {
		return v.CurrentDriverName
	}
	for _, t := range upcoming {
		if t.DriverName != "" {
			return t.DriverName
		}
	}
	if v.CurrentDriverID != "" {
		driver, err := s.drivers.GetByID(ctx, v.CurrentDriverID)
		if err == nil {
			return driver.Name
		}
		if !errors.Is(err, entity.ErrNotFound) {
			s.logger.Warn("Driver lookup failed",
				zap.String("driver_id", v.CurrentDriverID),
				zap.Error(err))
		}
	}
	return "Unassigned"
}

// sortTours orders by start date ascending with id as the tiebreaker so
// repeated projections over the same entities are byte-identical.
func sortTours(tours []*entity.Tour) {
	sort.Slice(tours, func(i, j int) bool {
		if !tours[i].StartDate.Equal(tours[j].StartDate) {
			return tours[i].StartDate.Before(tours[j].StartDate)
		}
		return tours[i].ID < tours[j].ID
	})
}
