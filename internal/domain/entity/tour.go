package entity

import "time"

// TourStatus is the scheduling status of a tour.
type TourStatus string

const (
	TourPlanned   TourStatus = "planned"
	TourConfirmed TourStatus = "confirmed"
	TourActive    TourStatus = "active"
	TourCompleted TourStatus = "completed"
	TourCancelled TourStatus = "cancelled"
)

// IsTerminal reports whether a tour permits no further status change.
func (s TourStatus) IsTerminal() bool {
	return s == TourCompleted || s == TourCancelled
}

// Tour is a scheduled deployment. VehicleID and DriverID may be unset
// until the assignment controller links them.
type Tour struct {
	ID              string     `json:"id"`
	Reference       string     `json:"tour_reference"`
	Name            string     `json:"tour_name"`
	Supplier        string     `json:"supplier"`
	DriverID        string     `json:"driver_id,omitempty"`
	DriverName      string     `json:"driver_name,omitempty"`
	VehicleID       string     `json:"vehicle_id,omitempty"`
	VehicleName     string     `json:"vehicle_name,omitempty"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	Status          TourStatus `json:"status"`
	EstimatedKm     int64      `json:"estimated_km"`
	TrailerRequired bool       `json:"trailer_required"`
	Pax             int        `json:"pax"`
	Itinerary       string     `json:"itinerary,omitempty"`
	Instructions    string     `json:"instructions,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedBy       string     `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
