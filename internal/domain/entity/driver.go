package entity

import "time"

// Driver is a registered driver within the organisation.
type Driver struct {
	ID             string    `json:"uid"`
	Name           string    `json:"name"`
	OrganisationID string    `json:"organisation_id,omitempty"`
	PassportNumber string    `json:"passport_number,omitempty"`
	PdpNumber      string    `json:"pdp_number,omitempty"`
	PassportExpiry string    `json:"passport_expiry,omitempty"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
