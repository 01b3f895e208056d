package types

import "time"

// LocationFix is a single resolved location observation. IP and the place
// fields are required; coordinates are present only when the fix was resolved
// via Wi-Fi positioning.
type LocationFix struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip" validate:"required"`
	City      string    `json:"city" validate:"required"`
	Region    string    `json:"region" validate:"required"`
	Country   string    `json:"country" validate:"required"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

// HasCoordinates reports whether the fix carries Wi-Fi-derived coordinates.
func (f LocationFix) HasCoordinates() bool {
	return f.Latitude != nil && f.Longitude != nil
}
