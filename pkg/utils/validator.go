package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format used across the API.
const DateLayout = "2006-01-02"

// ValidateAmountCents validates a monetary amount in minor-currency
// units. Amounts must be strictly positive.
func ValidateAmountCents(cents int64) error {
	if cents <= 0 {
		return fmt.Errorf("amount must be positive: %d", cents)
	}
	return nil
}

// ValidateOdometerKm validates an odometer reading.
func ValidateOdometerKm(km int64) error {
	if km < 0 {
		return fmt.Errorf("odometer reading must be non-negative: %d", km)
	}
	return nil
}

// ParseDate parses an unambiguous calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
