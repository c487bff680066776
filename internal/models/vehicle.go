package models

import "time"

// Vehicle represents a truck or van in the fleet.
type Vehicle struct {
	ID          string    `db:"id" json:"id"`
	PlateNumber string    `db:"plate_number" json:"plate_number"`
	Model       string    `db:"model" json:"model"`
	CapacityKg  int       `db:"capacity_kg" json:"capacity_kg"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// VehicleFilter describes query params for listing vehicles.
type VehicleFilter struct {
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
