// Package maintenance computes distance-based health indicators for the
// items tracked on every vehicle: tyres, wheel alignment/balancing,
// scheduled service and trailer brakes. The output is derived data; the
// odometer pair and the interval catalog on the vehicle remain the
// source of truth.
package maintenance

import (
	"fmt"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

// Color is the three-level health classification.
type Color string

const (
	Green Color = "green"
	Amber Color = "amber"
	Red   Color = "red"
)

// Indicator is the classification for one maintenance item.
type Indicator struct {
	Color        Color `json:"color"`
	RemainingKm  int64 `json:"remaining_km"`
	CumulativeKm int64 `json:"cumulative_km"`
}

// Snapshot is the full per-vehicle indicator set, cached onto tours for
// display but always recomputable from the vehicle.
type Snapshot struct {
	Tyres   Indicator `json:"tyres"`
	Wheels  Indicator `json:"wheels"`
	Service Indicator `json:"service"`
	Brakes  Indicator `json:"brakes"`
}

// Classify converts a maintenance interval and an odometer pair into a
// remaining distance and a color. Distance already travelled past the
// reference reading counts against the interval; both travelled and
// remaining clamp at zero. An interval of zero is unconfigured and can
// never be due, so it classifies green.
//
// Thresholds are exact integer comparisons on the remaining share of
// the interval: red at <= 5%, amber at <= 20%, green above.
func Classify(intervalKm, referenceOdo, currentOdo int64) Indicator {
	traveled := currentOdo - referenceOdo
	if traveled < 0 {
		traveled = 0
	}

	if intervalKm <= 0 {
		return Indicator{Color: Green, RemainingKm: 0, CumulativeKm: traveled}
	}

	remaining := intervalKm - traveled
	if remaining < 0 {
		remaining = 0
	}

	ind := Indicator{RemainingKm: remaining, CumulativeKm: traveled}
	switch {
	case remaining*100 <= intervalKm*5:
		ind.Color = Red
	case remaining*100 <= intervalKm*20:
		ind.Color = Amber
	default:
		ind.Color = Green
	}
	return ind
}

// NewSnapshot classifies all tracked items for a vehicle. Malformed
// odometer input is rejected before any classification.
//
// Brakes are special-cased: without a trailer attached there is nothing
// to track, so the indicator is a fixed amber "check" rather than a
// distance computation. With a trailer the dedicated trailer-brake
// interval applies.
func NewSnapshot(v *entity.Vehicle) (*Snapshot, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: vehicle is required", entity.ErrValidation)
	}
	if err := v.ValidateOdometer(); err != nil {
		return nil, err
	}

	ref := v.Odometer
	cur := v.CurrentReading()

	snap := &Snapshot{
		Tyres:   Classify(v.Intervals.TyresKm, ref, cur),
		Wheels:  Classify(v.Intervals.AlignmentBalancingKm, ref, cur),
		Service: Classify(v.Intervals.ServiceKm, ref, cur),
	}

	if v.HasTrailer() {
		snap.Brakes = Classify(v.Intervals.TrailerBrakesKm, ref, cur)
	} else {
		snap.Brakes = Indicator{Color: Amber}
	}

	return snap, nil
}

// WorstColor returns the most severe color in the snapshot. Vehicles at
// red are refused assignment.
func (s *Snapshot) WorstColor() Color {
	worst := Green
	for _, ind := range []Indicator{s.Tyres, s.Wheels, s.Service, s.Brakes} {
		switch ind.Color {
		case Red:
			return Red
		case Amber:
			worst = Amber
		}
	}
	return worst
}
