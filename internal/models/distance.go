package models

import "time"

// RouteDistance is one cached mapping-API result keyed by the rounded
// origin/destination coordinate pair.
type RouteDistance struct {
	ID              string    `db:"id" json:"id"`
	FromLat         float64   `db:"from_lat" json:"from_lat"`
	FromLng         float64   `db:"from_lng" json:"from_lng"`
	ToLat           float64   `db:"to_lat" json:"to_lat"`
	ToLng           float64   `db:"to_lng" json:"to_lng"`
	DistanceKm      float64   `db:"distance_km" json:"distance_km"`
	DurationMinutes float64   `db:"duration_minutes" json:"duration_minutes"`
	TrafficFactor   float64   `db:"traffic_factor" json:"traffic_factor"`
	CalculatedAt    time.Time `db:"calculated_at" json:"calculated_at"`
}
