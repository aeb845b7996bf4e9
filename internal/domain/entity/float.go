package entity

import "time"

// FloatStatus is the status of a cash advance.
type FloatStatus string

const (
	FloatOpen   FloatStatus = "open"
	FloatClosed FloatStatus = "closed"
)

// Float is a cash advance issued to a driver, optionally tied to one
// tour. Amounts are integer minor-currency units (cents). Invariant:
// 0 <= RemainingCents <= OriginalCents, and Active mirrors Status.
type Float struct {
	ID             string      `json:"id"`
	DriverID       string      `json:"driver_id"`
	DriverName     string      `json:"driver_name"`
	TourID         string      `json:"tour_id,omitempty"`
	OriginalCents  int64       `json:"original_amount_cents"`
	RemainingCents int64       `json:"remaining_amount_cents"`
	Active         bool        `json:"active"`
	Status         FloatStatus `json:"status"`
	Message        string      `json:"message,omitempty"`
	IssuedAt       time.Time   `json:"issued_at"`
	ClosedAt       *time.Time  `json:"closed_at,omitempty"`
}

// IsOpen reports whether the float still accepts expense approvals.
func (f *Float) IsOpen() bool {
	return f.Status == FloatOpen
}
