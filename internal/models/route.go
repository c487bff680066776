package models

import "time"

// Route represents a fixed transport corridor between two points.
type Route struct {
	ID              string    `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	Name            string    `db:"name" json:"name"`
	CustomerID      *string   `db:"customer_id" json:"customer_id,omitempty"`
	OriginName      string    `db:"origin_name" json:"origin_name"`
	OriginLat       float64   `db:"origin_lat" json:"origin_lat"`
	OriginLng       float64   `db:"origin_lng" json:"origin_lng"`
	DestinationName string    `db:"destination_name" json:"destination_name"`
	DestinationLat  float64   `db:"destination_lat" json:"destination_lat"`
	DestinationLng  float64   `db:"destination_lng" json:"destination_lng"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// RouteFilter describes query params for listing routes.
type RouteFilter struct {
	CustomerID string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
