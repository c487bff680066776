package dto

import "time"

// BoardRow is one denormalized row of the schedule board view: a template
// joined with its resolved instance plus display names and computed flags.
type BoardRow struct {
	InstanceID          string     `db:"instance_id" json:"instance_id"`
	RouteScheduleID     string     `db:"route_schedule_id" json:"route_schedule_id"`
	RouteID             string     `db:"route_id" json:"route_id"`
	RouteCode           string     `db:"route_code" json:"route_code"`
	RouteName           string     `db:"route_name" json:"route_name"`
	OccurrenceDate      time.Time  `db:"occurrence_date" json:"occurrence_date"`
	StandbyDate         time.Time  `db:"standby_date" json:"standby_date"`
	StandbyTime         string     `db:"standby_time" json:"standby_time"`
	DepartureDate       time.Time  `db:"departure_date" json:"departure_date"`
	DepartureTime       string     `db:"departure_time" json:"departure_time"`
	DriverID            *string    `db:"driver_id" json:"driver_id,omitempty"`
	DriverName          *string    `db:"driver_name" json:"driver_name,omitempty"`
	VehicleID           *string    `db:"vehicle_id" json:"vehicle_id,omitempty"`
	VehiclePlate        *string    `db:"vehicle_plate" json:"vehicle_plate,omitempty"`
	Status              string     `db:"status" json:"status"`
	Priority            int        `db:"priority" json:"priority"`
	IsOverride          bool       `db:"is_override" json:"is_override"`
	IsCrossDayDeparture bool       `db:"is_cross_day_departure" json:"is_cross_day_departure"`
	UpdatedAt           *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// DistanceResponse is what distance lookups return, cached or fresh.
type DistanceResponse struct {
	RouteID         string    `json:"route_id,omitempty"`
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes float64   `json:"duration_minutes"`
	TrafficFactor   float64   `json:"traffic_factor"`
	CalculatedAt    time.Time `json:"calculated_at"`
	FromCache       bool      `json:"from_cache"`
}

// BatchDistancesRequest computes distances for several routes at once.
type BatchDistancesRequest struct {
	RouteIDs []string `json:"route_ids" validate:"required,min=1"`
	Refresh  bool     `json:"refresh"`
}

// BatchDistancesResult isolates per-item failures so the batch completes.
type BatchDistancesResult struct {
	Results map[string]DistanceResponse `json:"results"`
	Errors  map[string]string           `json:"errors,omitempty"`
}
